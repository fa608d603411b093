package call

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/brianvoe/gofakeit/v7"
)

// GenerateTokens produces the synthetic transcription feed for one call:
// 25-124 lorem words plus exactly one name marker and one address marker
// spliced in at independent random positions. Markers are "$"-prefixed so
// downstream consumers can pick them out of the stream.
func GenerateTokens() []string {
	n := 25 + rand.IntN(100)
	tokens := make([]string, 0, n+2)
	for range n {
		tokens = append(tokens, gofakeit.LoremIpsumWord())
	}

	nameToken := fmt.Sprintf("$%s $%s", gofakeit.FirstName(), gofakeit.LastName())
	addr := gofakeit.Address()
	addressToken := fmt.Sprintf("$%s, $Suite %d, $%s, $%s, $%s",
		addr.Street, gofakeit.Number(100, 999), addr.City, addr.State, addr.Zip)

	tokens = slices.Insert(tokens, rand.IntN(len(tokens)+1), nameToken)
	tokens = slices.Insert(tokens, rand.IntN(len(tokens)+1), addressToken)
	return tokens
}

// GeneratePhoneNumber returns a formatted caller number for a simulated call.
func GeneratePhoneNumber() string {
	return gofakeit.PhoneFormatted()
}
