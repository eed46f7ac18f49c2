package scoring

import (
	"strings"

	"examhub_backend/internal/model"
)

// Verdict 单题判定结果
type Verdict struct {
	Resolution string
	Points     int
}

// Score 对一道固化题目判定一份作答。纯函数，结果只依赖入参。
// 客观题（单选/判断）全对满分、否则零分；主观题一律返回 unresolved，
// 由人工评分路径给分，引擎不对自由文本做任何相似度判断。
func Score(q model.QuestionSnapshot, value string) Verdict {
	switch q.QuestionType {
	case model.QuestionTypeSingleChoice:
		if value != "" && value == q.CorrectAnswer {
			return Verdict{Resolution: model.ResolutionAutoCorrect, Points: q.Points}
		}
		return Verdict{Resolution: model.ResolutionAutoIncorrect, Points: 0}

	case model.QuestionTypeTrueFalse:
		got, ok := parseBool(value)
		want, wantOK := parseBool(q.CorrectAnswer)
		if ok && wantOK && got == want {
			return Verdict{Resolution: model.ResolutionAutoCorrect, Points: q.Points}
		}
		return Verdict{Resolution: model.ResolutionAutoIncorrect, Points: 0}

	case model.QuestionTypeOpenEnded:
		return Verdict{Resolution: model.ResolutionUnresolved, Points: 0}

	default:
		// 未知题型不做自动判定
		return Verdict{Resolution: model.ResolutionUnresolved, Points: 0}
	}
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}
