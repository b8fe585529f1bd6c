package question

type CreateSubjectDTO struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type OptionDTO struct {
	Label string `json:"label" validate:"required,max=2"`
	Text  string `json:"text" validate:"max=2000"`
}

type QuestionDTO struct {
	Text          string      `json:"text" validate:"required,max=5000"`
	Options       []OptionDTO `json:"options" validate:"required,min=2,max=5,dive"`
	CorrectAnswer string      `json:"correct_answer" validate:"required,max=2"`
	Explanation   string      `json:"explanation" validate:"max=5000"`
	Marks         int         `json:"marks" validate:"omitempty,min=1,max=100"`
}
