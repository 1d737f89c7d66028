package nodes

import "fmt"

// Policy is a mastery-model family.
type Policy string

const (
	PolicyDoAll         Policy = "do_all"
	PolicySkillCheck    Policy = "skill_check"
	PolicyMOfN          Policy = "m_of_n"
	PolicyCorrectInARow Policy = "num_correct_in_a_row"
)

// Mastery is the completion criterion of an exercise. M and N are set for
// m-of-n; N alone for correct-in-a-row.
type Mastery struct {
	Policy Policy
	M      int
	N      int
}

// DefaultMastery is used when the snapshot names an unknown model.
var DefaultMastery = Mastery{Policy: PolicyDoAll}

var masteryTable = map[string]Mastery{
	"do-all":                  {Policy: PolicyDoAll},
	"skill-check":             {Policy: PolicySkillCheck},
	"num_problems_4":          {Policy: PolicyMOfN, M: 3, N: 4},
	"num_problems_7":          {Policy: PolicyMOfN, M: 5, N: 7},
	"num_problems_14":         {Policy: PolicyMOfN, M: 10, N: 14},
	"num_correct_in_a_row_2":  {Policy: PolicyCorrectInARow, N: 2},
	"num_correct_in_a_row_3":  {Policy: PolicyCorrectInARow, N: 3},
	"num_correct_in_a_row_5":  {Policy: PolicyCorrectInARow, N: 5},
	"num_correct_in_a_row_10": {Policy: PolicyCorrectInARow, N: 10},
}

// ParseMastery maps a suggested_completion_criteria value.
func ParseMastery(value string) (Mastery, bool) {
	m, ok := masteryTable[value]
	return m, ok
}

// Model returns the model name the serializer writes.
func (m Mastery) Model() string {
	if m.Policy == PolicyCorrectInARow {
		return fmt.Sprintf("%s_%d", m.Policy, m.N)
	}
	if m.Policy == "" {
		return string(PolicyDoAll)
	}
	return string(m.Policy)
}

func (m Mastery) String() string {
	if m.Policy == PolicyMOfN {
		return fmt.Sprintf("%s(%d,%d)", m.Policy, m.M, m.N)
	}
	return m.Model()
}
