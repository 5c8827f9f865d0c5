package utils

import "github.com/google/uuid"

func NewID() string { return uuid.NewString() }

// IsUUID 只校验语法，不查库
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
