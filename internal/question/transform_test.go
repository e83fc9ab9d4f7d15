package question

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string {
	return &s
}

func TestTransformBareSchema(t *testing.T) {
	q := Transform(Raw{
		ID:           json.RawMessage(`7`),
		OptionA:      strptr("938"),
		OptionB:      strptr("1010"),
		OptionC:      strptr("1288"),
		OptionD:      strptr("1428"),
		AnswerKeyAlt: strptr("b"),
		PromptAlt:    strptr("  Nhà Lý dời đô về Thăng Long năm nào?  "),
	})

	assert.Equal(t, "7", q.ID)
	assert.Equal(t, "Nhà Lý dời đô về Thăng Long năm nào?", q.Text)
	assert.Equal(t, []string{"938", "1010", "1288", "1428"}, q.Options)
	assert.Equal(t, "1010", q.CorrectAnswer)
	assert.Equal(t, DifficultyNormal, q.Difficulty)
	assert.True(t, q.Playable())
}

func TestTransformPrefixedSchema(t *testing.T) {
	q := Transform(Raw{
		ID:         json.RawMessage(`"q-12"`),
		AltOptionA: strptr("Ngô Quyền"),
		AltOptionB: strptr("Lê Lợi"),
		AltOptionC: strptr("Quang Trung"),
		AltOptionD: strptr("Lý Thường Kiệt"),
		AnswerKey:  strptr("C"),
		Prompt:     strptr("Ai đại phá quân Thanh năm 1789?"),
		HardFlag:   json.RawMessage(`"true"`),
	})

	assert.Equal(t, "q-12", q.ID)
	assert.Equal(t, "Quang Trung", q.CorrectAnswer)
	assert.Equal(t, DifficultyRare, q.Difficulty)
}

func TestTransformHardFlagVariants(t *testing.T) {
	cases := []struct {
		name string
		flag json.RawMessage
		want string
	}{
		{"native true", json.RawMessage(`true`), DifficultyRare},
		{"string true", json.RawMessage(`"true"`), DifficultyRare},
		{"native false", json.RawMessage(`false`), DifficultyNormal},
		{"string false", json.RawMessage(`"false"`), DifficultyNormal},
		{"absent", nil, DifficultyNormal},
		{"garbage", json.RawMessage(`"yes"`), DifficultyNormal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := Transform(Raw{
				AltOptionA: strptr("x"),
				Prompt:     strptr("p"),
				HardFlag:   tc.flag,
			})
			assert.Equal(t, tc.want, q.Difficulty)
		})
	}
}

func TestTransformFiltersEmptyOptionsKeepingOrder(t *testing.T) {
	q := Transform(Raw{
		AltOptionA: strptr(""),
		AltOptionB: strptr("hai"),
		AltOptionD: strptr("bốn"),
		AnswerKey:  strptr("A"),
		Prompt:     strptr("p"),
	})

	assert.Equal(t, []string{"hai", "bốn"}, q.Options)
	// Designator points at a filtered-out field; first surviving option wins.
	assert.Equal(t, "hai", q.CorrectAnswer)
}

func TestTransformMissingDesignatorDefaultsToA(t *testing.T) {
	q := Transform(Raw{
		OptionA: strptr("đúng"),
		OptionB: strptr("sai"),
		Prompt:  strptr("p"),
	})
	assert.Equal(t, "đúng", q.CorrectAnswer)
}

func TestTransformPlaceholderWhenNoOptions(t *testing.T) {
	q := Transform(Raw{
		ID:     json.RawMessage(`3`),
		Prompt: strptr("câu hỏi trống"),
	})

	assert.Equal(t, []string{"A", "B", "C", "D"}, q.Options)
	assert.Equal(t, "A", q.CorrectAnswer)
	assert.Contains(t, q.Options, q.CorrectAnswer)
}

func TestTransformGeneratesIDWhenMissing(t *testing.T) {
	q := Transform(Raw{AltOptionA: strptr("x"), Prompt: strptr("p")})
	assert.NotEmpty(t, q.ID)
}

func TestTransformCorrectAnswerAlwaysInOptions(t *testing.T) {
	records := []Raw{
		{OptionA: strptr("a"), OptionB: strptr("b"), AnswerKeyAlt: strptr("D"), Prompt: strptr("p")},
		{AltOptionC: strptr("c"), AnswerKey: strptr("c"), Prompt: strptr("p")},
		{Prompt: strptr("p")},
		{OptionA: strptr("solo"), Prompt: strptr("p")},
		{AltOptionA: strptr("1"), AltOptionB: strptr("2"), AnswerKey: strptr("B"), Prompt: strptr("p")},
	}
	for i, r := range records {
		q := Transform(r)
		assert.Contains(t, q.Options, q.CorrectAnswer, "record %d", i)
	}
}

func TestTransformUnplayableWithoutPrompt(t *testing.T) {
	q := Transform(Raw{AltOptionA: strptr("x")})
	assert.False(t, q.Playable())

	q = Transform(Raw{Prompt: strptr("   ")})
	assert.False(t, q.Playable())
}

func TestFallbackSetIsPlayable(t *testing.T) {
	records := Fallback()
	assert.NotEmpty(t, records)

	for i, r := range records {
		q := Transform(r)
		assert.True(t, q.Playable(), "fallback record %d", i)
		assert.Contains(t, q.Options, q.CorrectAnswer, "fallback record %d", i)
	}
}
