package scoring

import (
	"testing"

	"examhub_backend/internal/model"
)

func TestScore_SingleChoice(t *testing.T) {
	q := model.QuestionSnapshot{
		QuestionID:    1,
		QuestionType:  model.QuestionTypeSingleChoice,
		CorrectAnswer: "B",
		Points:        5,
	}

	tests := []struct {
		name       string
		value      string
		resolution string
		points     int
	}{
		{name: "correct option", value: "B", resolution: model.ResolutionAutoCorrect, points: 5},
		{name: "wrong option", value: "A", resolution: model.ResolutionAutoIncorrect, points: 0},
		{name: "empty value", value: "", resolution: model.ResolutionAutoIncorrect, points: 0},
		{name: "case matters for option ids", value: "b", resolution: model.ResolutionAutoIncorrect, points: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(q, tc.value)
			if got.Resolution != tc.resolution {
				t.Fatalf("expected resolution=%s, got=%s", tc.resolution, got.Resolution)
			}
			if got.Points != tc.points {
				t.Fatalf("expected points=%d, got=%d", tc.points, got.Points)
			}
		})
	}
}

func TestScore_TrueFalse(t *testing.T) {
	q := model.QuestionSnapshot{
		QuestionID:    2,
		QuestionType:  model.QuestionTypeTrueFalse,
		CorrectAnswer: "true",
		Points:        3,
	}

	tests := []struct {
		name       string
		value      string
		resolution string
		points     int
	}{
		{name: "exact match", value: "true", resolution: model.ResolutionAutoCorrect, points: 3},
		{name: "case insensitive", value: "TRUE", resolution: model.ResolutionAutoCorrect, points: 3},
		{name: "whitespace tolerated", value: " True ", resolution: model.ResolutionAutoCorrect, points: 3},
		{name: "wrong value", value: "false", resolution: model.ResolutionAutoIncorrect, points: 0},
		{name: "not a boolean", value: "yes", resolution: model.ResolutionAutoIncorrect, points: 0},
		{name: "empty value", value: "", resolution: model.ResolutionAutoIncorrect, points: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(q, tc.value)
			if got.Resolution != tc.resolution {
				t.Fatalf("expected resolution=%s, got=%s", tc.resolution, got.Resolution)
			}
			if got.Points != tc.points {
				t.Fatalf("expected points=%d, got=%d", tc.points, got.Points)
			}
		})
	}
}

func TestScore_OpenEndedNeverAutoScored(t *testing.T) {
	q := model.QuestionSnapshot{
		QuestionID:   3,
		QuestionType: model.QuestionTypeOpenEnded,
		Points:       10,
	}

	for _, value := range []string{"", "any essay text", "true"} {
		got := Score(q, value)
		if got.Resolution != model.ResolutionUnresolved {
			t.Fatalf("open_ended must stay unresolved, got=%s", got.Resolution)
		}
		if got.Points != 0 {
			t.Fatalf("open_ended must carry no auto points, got=%d", got.Points)
		}
	}
}

func TestScore_UnknownTypeStaysUnresolved(t *testing.T) {
	q := model.QuestionSnapshot{QuestionID: 4, QuestionType: "matching", Points: 2}
	got := Score(q, "whatever")
	if got.Resolution != model.ResolutionUnresolved || got.Points != 0 {
		t.Fatalf("unknown type must not be auto-scored, got=%+v", got)
	}
}
