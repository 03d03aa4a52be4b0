package common

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"
)

func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func GetEnvInt(key string, fallback int) int {
	str := GetEnv(key, strconv.Itoa(fallback))
	val, err := strconv.Atoi(str)
	if err != nil {
		return fallback
	}

	return val
}

// GenerateRandomInt generate a random int that is not determined
func GenerateRandomInt() int {
	source := rand.NewSource(time.Now().UnixNano())
	random := rand.New(source)

	return random.Intn(10000)
}

// MakeSessionID creates a session identifier
// example: sess_1717171717171_4821
func MakeSessionID() string {
	return fmt.Sprintf("sess_%d_%04d", time.Now().UnixMilli(), GenerateRandomInt())
}
