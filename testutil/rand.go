package testutil

import (
	"strconv"

	"github.com/brianvoe/gofakeit/v7"
)

// RandomAlphaNum generates random alphanumeric string
func RandomAlphaNum(length int) string {
	return gofakeit.Password(true, true, true, false, false, length)
}

// RandomDigest returns a base58 string shaped like a Sui transaction digest.
func RandomDigest() string {
	return gofakeit.Regex("[1-9A-HJ-NP-Za-km-z]{44}")
}

// RandomAddress returns a 32 byte hex address with the 0x prefix.
func RandomAddress() string {
	return "0x" + gofakeit.Regex("[0-9a-f]{64}")
}

// RandomChatID returns a Telegram supergroup style chat id.
func RandomChatID() string {
	return strconv.FormatInt(-1_000_000_000_000-gofakeit.Int64()%1_000_000_000, 10)
}
