package question

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Raw mirrors one flat record from the question store. Two historical
// schemas exist side by side: the older one keeps options in bare letter
// fields (A..D) with the answer designator in CautraLoi, the newer one
// prefixes options with dap_an and designates the answer in dap_an_dung.
// Pointer fields distinguish absent from empty so schema detection works.
type Raw struct {
	ID json.RawMessage `json:"id"`

	OptionA *string `json:"A"`
	OptionB *string `json:"B"`
	OptionC *string `json:"C"`
	OptionD *string `json:"D"`

	AltOptionA *string `json:"dap_anA"`
	AltOptionB *string `json:"dap_anB"`
	AltOptionC *string `json:"dap_anC"`
	AltOptionD *string `json:"dap_anD"`

	AnswerKey    *string `json:"dap_an_dung"`
	AnswerKeyAlt *string `json:"CautraLoi"`

	Prompt    *string `json:"noi_dung"`
	PromptAlt *string `json:"cau_hoi"`

	HardFlag json.RawMessage `json:"cau_hoi_kho"`
}

// placeholderOptions stands in when a record yields no usable option.
var placeholderOptions = []string{"A", "B", "C", "D"}

// Transform normalizes a raw record into a Question. It is best-effort:
// records with no usable prompt or options still come back as a value and
// are rejected later by the pool loader's Playable check.
func Transform(r Raw) Question {
	options := collectOptions(r)

	answer, ok := r.optionByKey(answerKey(r))
	if !ok && len(options) > 0 {
		answer = options[0]
	}

	if len(options) == 0 {
		options = append([]string(nil), placeholderOptions...)
		if answer == "" {
			answer = options[0]
		}
	}

	id := stringifyID(r.ID)
	if id == "" {
		id = uuid.NewString()
	}

	return Question{
		ID:            id,
		Difficulty:    difficulty(r),
		Text:          strings.TrimSpace(prompt(r)),
		Options:       options,
		CorrectAnswer: answer,
	}
}

// collectOptions picks the schema by probing the bare A field, then drops
// empty values while keeping the relative order.
func collectOptions(r Raw) []string {
	fields := []*string{r.AltOptionA, r.AltOptionB, r.AltOptionC, r.AltOptionD}
	if r.OptionA != nil {
		fields = []*string{r.OptionA, r.OptionB, r.OptionC, r.OptionD}
	}

	options := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != nil && *f != "" {
			options = append(options, *f)
		}
	}
	return options
}

// answerKey resolves the designator field to a single uppercase letter,
// defaulting to "A" when neither schema carries one.
func answerKey(r Raw) string {
	key := "A"
	switch {
	case r.AnswerKey != nil:
		key = *r.AnswerKey
	case r.AnswerKeyAlt != nil:
		key = *r.AnswerKeyAlt
	}
	key = strings.ToUpper(key)
	if key == "" {
		return ""
	}
	return string([]rune(key)[0])
}

// optionByKey looks up the answer value named by the designator, trying
// the bare field first and the dap_an variant second.
func (r Raw) optionByKey(key string) (string, bool) {
	var bare, alt *string
	switch key {
	case "A":
		bare, alt = r.OptionA, r.AltOptionA
	case "B":
		bare, alt = r.OptionB, r.AltOptionB
	case "C":
		bare, alt = r.OptionC, r.AltOptionC
	case "D":
		bare, alt = r.OptionD, r.AltOptionD
	default:
		return "", false
	}
	if bare != nil && *bare != "" {
		return *bare, true
	}
	if alt != nil && *alt != "" {
		return *alt, true
	}
	return "", false
}

func prompt(r Raw) string {
	if r.Prompt != nil {
		return *r.Prompt
	}
	if r.PromptAlt != nil {
		return *r.PromptAlt
	}
	return ""
}

// difficulty maps the hard flag to a tier. Stores have shipped the flag
// both as a native boolean and as the string "true".
func difficulty(r Raw) string {
	if len(r.HardFlag) == 0 {
		return DifficultyNormal
	}
	var b bool
	if err := json.Unmarshal(r.HardFlag, &b); err == nil && b {
		return DifficultyRare
	}
	var s string
	if err := json.Unmarshal(r.HardFlag, &s); err == nil && s == "true" {
		return DifficultyRare
	}
	return DifficultyNormal
}

// stringifyID renders the id field whether the store sent it as a JSON
// number or a string.
func stringifyID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
