package model

const (
	QuestionTypeSingleChoice = "single_choice"
	QuestionTypeTrueFalse    = "true_false"
	QuestionTypeOpenEnded    = "open_ended"
)

// AutoGradable reports whether a question type can be scored without a human.
func AutoGradable(questionType string) bool {
	return questionType == QuestionTypeSingleChoice || questionType == QuestionTypeTrueFalse
}

// swagger:model ExamQuestion
type ExamQuestion struct {
	BaseModel

	ExamID       uint   `gorm:"index" json:"examId"`
	QuestionType string `gorm:"size:50" json:"questionType"`
	Content      string `gorm:"type:text" json:"content"`
	Options      string `gorm:"type:json" json:"options"` // 选择题选项（JSON array of {id,text}）
	// CorrectAnswer 单选题存选项ID，判断题存 "true"/"false"，主观题为空
	CorrectAnswer string `gorm:"size:255" json:"-"`
	Points        int    `gorm:"default:0" json:"points"`
	Order         int    `gorm:"default:0" json:"order"`
	Explanation   string `gorm:"type:text" json:"explanation"`
}

func (ExamQuestion) TableName() string {
	return "exam_questions"
}

// QuestionOption 选择题的一个选项
type QuestionOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}
