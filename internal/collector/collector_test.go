package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjstillabower/city-weather/internal/query"
)

func TestNewForm_DraftFromStoredCity(t *testing.T) {
	assert.Equal(t, "", NewForm("").Draft)
	assert.Equal(t, "Berlin", NewForm("Berlin").Draft)
}

func TestSubmit_NonEmptyPropagatesTrimmedCity(t *testing.T) {
	inputs := map[string]query.CityQuery{
		"Paris":          "Paris",
		"  Tokyo ":       "Tokyo",
		"\tNew York\n":   "New York",
		"Rio de Janeiro": "Rio de Janeiro",
	}
	for input, want := range inputs {
		t.Run(input, func(t *testing.T) {
			store := query.NewStore()
			f := &Form{Draft: input, Err: "stale error"}

			ok := f.Submit(store.Set)

			require.True(t, ok)
			assert.Equal(t, want, store.Current())
			assert.Empty(t, f.Err)
		})
	}
}

func TestSubmit_EmptyLeavesErrorAndNoWrite(t *testing.T) {
	for _, input := range []string{"", " ", "\t\n"} {
		store := query.NewStore()
		store.Set("Madrid")
		calls := 0
		f := &Form{Draft: input}

		ok := f.Submit(func(q query.CityQuery) {
			calls++
			store.Set(q)
		})

		assert.False(t, ok)
		assert.NotEmpty(t, f.Err)
		assert.Equal(t, 0, calls)
		assert.Equal(t, query.CityQuery("Madrid"), store.Current())
	}
}

func TestSubmit_CallsUpdateOnce(t *testing.T) {
	calls := 0
	f := &Form{Draft: "Cairo"}
	f.Submit(func(query.CityQuery) { calls++ })
	assert.Equal(t, 1, calls)
}
