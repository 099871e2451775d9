// Package strength scores candidate passwords while they are being typed.
package strength

import (
	"strings"
	"unicode/utf8"
)

// Level is the severity a front end uses to colour an Assessment.
type Level string

const (
	LevelDanger  Level = "danger"
	LevelWarning Level = "warning"
	LevelSuccess Level = "success"
)

// MaxScore is the highest score Evaluate returns.
const MaxScore = 4

const (
	minLength   = 8
	bonusLength = 12

	specialChars = `!@#$%^&*(),.?":{}|<>`
)

var labels = [...]string{"Very Weak", "Weak", "Fair", "Strong", "Very Strong"}

// Criteria records which individual rules a password satisfies.
type Criteria struct {
	Length    bool `json:"length"`
	Uppercase bool `json:"uppercase"`
	Lowercase bool `json:"lowercase"`
	Number    bool `json:"number"`
	Special   bool `json:"special"`
}

// Assessment is the derived strength of a single password.
type Assessment struct {
	Score    int      `json:"score"`
	Label    string   `json:"label"`
	Level    Level    `json:"level"`
	Criteria Criteria `json:"criteria"`
}

// Evaluate scores password from 0 to MaxScore.
//
// Length, uppercase and lowercase are worth one point each. Numbers and
// special characters share a single point, and a password of at least
// twelve characters that has both earns one bonus point, capped at MaxScore.
func Evaluate(password string) Assessment {
	n := utf8.RuneCountInString(password)
	c := Criteria{Length: n >= minLength}
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			c.Uppercase = true
		case r >= 'a' && r <= 'z':
			c.Lowercase = true
		case r >= '0' && r <= '9':
			c.Number = true
		case strings.ContainsRune(specialChars, r):
			c.Special = true
		}
	}

	score := 0
	if c.Length {
		score++
	}
	if c.Uppercase {
		score++
	}
	if c.Lowercase {
		score++
	}
	if c.Number || c.Special {
		score++
	}
	if c.Number && c.Special && n >= bonusLength {
		score = min(MaxScore, score+1)
	}

	return Assessment{
		Score:    score,
		Label:    labels[score],
		Level:    levelFor(score),
		Criteria: c,
	}
}

func levelFor(score int) Level {
	switch {
	case score >= MaxScore:
		return LevelSuccess
	case score >= 2:
		return LevelWarning
	default:
		return LevelDanger
	}
}
