package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicableForAllows(t *testing.T) {
	tests := []struct {
		name string
		set  ApplicableFor
		bt   BuildingType
		want bool
	}{
		{"unrestricted", nil, BuildingExisting, true},
		{"query all", ApplicableFor{BuildingBaru}, BuildingAll, true},
		{"listed", ApplicableFor{BuildingBaru, BuildingExisting}, BuildingExisting, true},
		{"declares all", ApplicableFor{BuildingAll}, BuildingPascabencana, true},
		{"restricted", ApplicableFor{BuildingBaru, BuildingPerubahanFungsi}, BuildingExisting, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.set.Allows(tt.bt))
		})
	}
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory(" Keandalan ")
	require.True(t, ok)
	assert.Equal(t, CategoryKeandalan, c)

	_, ok = ParseCategory("utilitas")
	assert.False(t, ok)
}

func TestParseBuildingType(t *testing.T) {
	b, ok := ParseBuildingType("")
	require.True(t, ok)
	assert.Equal(t, BuildingAll, b)

	_, ok = ParseBuildingType("renovasi")
	assert.False(t, ok)
}

func TestTemplateCloneIsDeep(t *testing.T) {
	orig := Template{
		ID:            "m21",
		ApplicableFor: ApplicableFor{BuildingBaru},
		Subsections: []Subsection{{
			ID:    "m21a",
			Items: []Item{{ID: "i1", Columns: []Column{{Name: "kondisi", Type: ColumnSelect, Options: []string{"baik"}}}}},
		}},
	}
	cp := orig.Clone()
	cp.ApplicableFor[0] = BuildingExisting
	cp.Subsections[0].Items[0].Columns[0].Options[0] = "rusak"

	assert.Equal(t, BuildingBaru, orig.ApplicableFor[0])
	assert.Equal(t, "baik", orig.Subsections[0].Items[0].Columns[0].Options[0])
}

func TestPhotoRequirementMerge(t *testing.T) {
	yes, no := true, false
	global := PhotoRequirement{RequireGeotag: &yes, MinPhotos: 1, MaxPhotos: 5, RequiredSubjects: []string{"tampak depan"}}

	merged := global.Merge(PhotoRequirement{RequireGeotag: &no, MinPhotos: 2})

	require.NotNil(t, merged.RequireGeotag)
	assert.False(t, *merged.RequireGeotag)
	assert.Equal(t, 2, merged.MinPhotos)
	assert.Equal(t, 5, merged.MaxPhotos)
	assert.Equal(t, []string{"tampak depan"}, merged.RequiredSubjects)
	assert.True(t, *global.RequireGeotag)
}
