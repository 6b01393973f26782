package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAttributes() Attributes {
	return Attributes{
		Name:        "Max",
		Species:     SpeciesDog,
		Breed:       "Golden Retriever",
		Age:         3,
		Size:        SizeLarge,
		EnergyLevel: 8,
		Description: "Friendly and energetic",
		PhotoURLs:   []string{" https://example.com/max.jpg ", ""},
	}
}

func TestNewAnimal_DefaultsToAvailable(t *testing.T) {
	animal, err := NewAnimal("a-1", "shelter-1", validAttributes())
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, animal.Status)
	assert.Equal(t, []string{"https://example.com/max.jpg"}, animal.PhotoURLs)
	assert.Equal(t, "https://example.com/max.jpg", animal.ImageURL())
}

func TestNewAnimal_Validation(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Attributes)
		shelter string
		want    error
	}{
		"missing shelter": {mutate: func(*Attributes) {}, shelter: "", want: ErrEmptyShelter},
		"blank name":      {mutate: func(a *Attributes) { a.Name = " " }, shelter: "s", want: ErrEmptyName},
		"bad species":     {mutate: func(a *Attributes) { a.Species = "dragon" }, shelter: "s", want: ErrInvalidSpecies},
		"bad size":        {mutate: func(a *Attributes) { a.Size = "huge" }, shelter: "s", want: ErrInvalidSize},
		"age too high":    {mutate: func(a *Attributes) { a.Age = 31 }, shelter: "s", want: ErrInvalidAge},
		"energy negative": {mutate: func(a *Attributes) { a.EnergyLevel = -1 }, shelter: "s", want: ErrInvalidEnergy},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			attrs := validAttributes()
			tc.mutate(&attrs)
			_, err := NewAnimal("a-1", tc.shelter, attrs)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestClone_IsDeep(t *testing.T) {
	animal, err := NewAnimal("a-1", "shelter-1", validAttributes())
	require.NoError(t, err)
	clone := animal.Clone()
	clone.PhotoURLs[0] = "changed"
	assert.NotEqual(t, clone.PhotoURLs[0], animal.PhotoURLs[0])
}
