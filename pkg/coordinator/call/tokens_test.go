package call

import (
	"strings"
	"testing"
)

func TestGenerateTokens_CountBounds(t *testing.T) {
	for range 20 {
		tokens := GenerateTokens()
		// 25-124 lorem words plus the two markers.
		if len(tokens) < 27 || len(tokens) > 126 {
			t.Fatalf("token count = %d, want 27..126", len(tokens))
		}
	}
}

func TestGenerateTokens_ExactlyOneNameAndAddressMarker(t *testing.T) {
	for range 20 {
		tokens := GenerateTokens()
		var names, addresses int
		for _, token := range tokens {
			if !strings.HasPrefix(token, "$") {
				continue
			}
			if strings.Contains(token, ",") {
				addresses++
			} else {
				names++
			}
		}
		if names != 1 {
			t.Fatalf("name markers = %d in %v", names, tokens)
		}
		if addresses != 1 {
			t.Fatalf("address markers = %d in %v", addresses, tokens)
		}
	}
}

func TestGenerateTokens_NameMarkerShape(t *testing.T) {
	tokens := GenerateTokens()
	for _, token := range tokens {
		if strings.HasPrefix(token, "$") && !strings.Contains(token, ",") {
			if !strings.Contains(token, " $") {
				t.Fatalf("name marker %q missing last-name segment", token)
			}
			return
		}
	}
	t.Fatalf("no name marker found")
}

func TestGeneratePhoneNumber_NotEmpty(t *testing.T) {
	if GeneratePhoneNumber() == "" {
		t.Fatalf("empty phone number")
	}
}
