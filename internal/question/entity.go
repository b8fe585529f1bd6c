package question

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Labels lists every option label a question may carry, in display order.
var Labels = []string{"A", "B", "C", "D", "E"}

type Subject struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string     `gorm:"type:text;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	SchoolID    *uuid.UUID `gorm:"type:uuid;index" json:"school_id,omitempty"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Questions []Question `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

type Question struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SubjectID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"subject_id"`
	Text          string         `gorm:"type:text;not null" json:"text"`
	Options       datatypes.JSON `gorm:"type:jsonb;not null" json:"options"`
	CorrectAnswer string         `gorm:"type:text;not null" json:"correct_answer"`
	Explanation   *string        `gorm:"type:text" json:"explanation,omitempty"`
	Marks         int            `gorm:"not null;default:1" json:"marks"`
	CreatedBy     uuid.UUID      `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// OptionList decodes the stored options. Undecodable data yields no options.
func (q *Question) OptionList() []Option {
	var opts []Option
	if len(q.Options) == 0 {
		return nil
	}
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil
	}
	return opts
}

// OptionText returns the text behind label, or false when the label is absent.
func (q *Question) OptionText(label string) (string, bool) {
	for _, o := range q.OptionList() {
		if o.Label == label {
			return o.Text, true
		}
	}
	return "", false
}

// EffectiveMarks treats an unset weight as one mark.
func (q *Question) EffectiveMarks() int {
	if q.Marks <= 0 {
		return 1
	}
	return q.Marks
}

func encodeOptions(opts []Option) (datatypes.JSON, error) {
	b, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
