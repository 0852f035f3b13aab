package service

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const MaxCommentLength = 1000

var (
	ErrEmptyText   = fmt.Errorf("text must not be empty")
	ErrTextTooLong = fmt.Errorf("text must be at most %d characters", MaxCommentLength)
)

// NormalizeCommentText trims text and enforces the comment length rules.
func NormalizeCommentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return "", ErrTextTooLong
	}
	return text, nil
}
