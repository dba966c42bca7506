package costbasis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	p, err := ParsePrice(" 35000.12 ", "EUR")
	require.NoError(t, err)
	assertDecimal(t, "35000.12", p)
	assert.Equal(t, "EUR", p.Currency())

	for _, s := range []string{"0", "-3", "abc", ""} {
		_, err := ParsePrice(s, "EUR")
		assert.ErrorIs(t, err, ErrInvalidPrice, s)
	}
}

func TestPriceFromJSON(t *testing.T) {
	doc := `{"bitcoin":{"eur":35000.12,"usd":"38000.5"},"name":"btc","quotes":[{"p":1},{"p":2.5}],"zero":0}`

	testCases := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "$.bitcoin.eur", want: "35000.12"},
		{path: "$.bitcoin.usd", want: "38000.5"},
		{path: "$.quotes[1].p", want: "2.5"},
		{path: "$.name", wantErr: true},
		{path: "$.zero", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			p, err := PriceFromJSON(strings.NewReader(doc), tc.path, "EUR")
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPrice)
				return
			}
			require.NoError(t, err)
			assertDecimal(t, tc.want, p)
		})
	}
}

func TestPriceFromJSON_Errors(t *testing.T) {
	_, err := PriceFromJSON(strings.NewReader("{"), "$.a", "")
	assert.Error(t, err)

	_, err = PriceFromJSON(strings.NewReader(`{"a":1}`), "$.b", "")
	assert.Error(t, err)
}
