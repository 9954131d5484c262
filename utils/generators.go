package utils

import (
	"math/rand"

	"github.com/google/uuid"
)

// GenerateID generates a unique identifier for entities
func GenerateID() string {
	return uuid.New().String()
}

// GenerateCode generates a random group join code
func GenerateCode() string {
	result := make([]byte, CodeLength)
	for i := range result {
		result[i] = CodeCharset[rand.Intn(len(CodeCharset))]
	}
	return string(result)
}
