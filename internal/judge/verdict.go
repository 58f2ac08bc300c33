package judge

import "fmt"

// Verdict is the classifier's suggestion for a yes/no question.
type Verdict int

const (
	// Pending marks a question that has not been judged yet, either because
	// analysis failed or because a human has not confirmed it.
	Pending Verdict = iota
	Yes
	No
	Irrelevant
	// Decisive means a truthful answer would let the asker deduce the
	// solution outright.
	Decisive
)

var verdictNames = [...]string{
	Pending:    "pending",
	Yes:        "yes",
	No:         "no",
	Irrelevant: "irrelevant",
	Decisive:   "decisive",
}

func (v Verdict) String() string {
	if v < 0 || int(v) >= len(verdictNames) {
		return fmt.Sprintf("verdict(%d)", int(v))
	}
	return verdictNames[v]
}

// Judged reports whether v is one of the four classifier outcomes.
func (v Verdict) Judged() bool {
	return v >= Yes && v <= Decisive
}

// ParseVerdict parses the lowercase text form of a verdict.
func ParseVerdict(s string) (Verdict, error) {
	for i, name := range verdictNames {
		if name == s {
			return Verdict(i), nil
		}
	}
	return Pending, fmt.Errorf("unknown verdict %q", s)
}

func (v Verdict) MarshalText() ([]byte, error) {
	if v < 0 || int(v) >= len(verdictNames) {
		return nil, fmt.Errorf("invalid verdict %d", int(v))
	}
	return []byte(verdictNames[v]), nil
}

func (v *Verdict) UnmarshalText(b []byte) error {
	parsed, err := ParseVerdict(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Score thresholds shared by every caller that turns a similarity score into
// a judgement.
const (
	SolvedScore = 80
	CloseScore  = 60
)

// Closeness buckets a similarity score.
type Closeness string

const (
	Solved Closeness = "solved"
	Close  Closeness = "close"
	Far    Closeness = "far"
)

// Judge maps a score in [0,100] to its closeness bucket.
func Judge(score int) Closeness {
	switch {
	case score >= SolvedScore:
		return Solved
	case score >= CloseScore:
		return Close
	default:
		return Far
	}
}
