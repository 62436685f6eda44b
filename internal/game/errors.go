package game

import "errors"

var (
	ErrEmptyName        = errors.New("character name is required")
	ErrNameTooLong      = errors.New("character name is too long")
	ErrDuplicateName    = errors.New("a character with this name already exists")
	ErrNotFound         = errors.New("character not found")
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrInvalidStat      = errors.New("stat out of range")
	ErrUnknownCondition = errors.New("unknown condition")
)
