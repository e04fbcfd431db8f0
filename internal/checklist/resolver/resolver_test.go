package resolver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"slfcert/internal/checklist/catalog"
	"slfcert/internal/checklist/models"
	id "slfcert/pkg/domain"
	dErrors "slfcert/pkg/domain-errors"
)

type ResolverSuite struct {
	suite.Suite
	resolver *Resolver
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	c, err := catalog.Default()
	s.Require().NoError(err)
	s.resolver = New(c)
}

func templateIDs(templates []models.Template) []string {
	out := make([]string, 0, len(templates))
	for _, t := range templates {
		out = append(out, t.ID)
	}
	return out
}

func itemIDs(items []models.FlatItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func (s *ResolverSuite) TestBySpecialization() {
	s.Run("struktur on new building gets structure and disaster mitigation", func() {
		got := s.resolver.BySpecialization(id.SpecializationStruktur, models.BuildingBaru)
		s.Equal([]string{"m21", "m210"}, templateIDs(got))
	})

	s.Run("arsitektur on existing building skips new-only and administrative templates", func() {
		got := s.resolver.BySpecialization(id.SpecializationArsitektur, models.BuildingExisting)
		s.Equal([]string{"m11", "m12", "m13", "m23", "m31"}, templateIDs(got))
		for _, t := range got {
			s.NotEqual(models.CategoryAdministrative, t.Category)
			s.True(t.ApplicableFor.Allows(models.BuildingExisting))
		}
	})

	s.Run("arsitektur on new building includes environmental impact", func() {
		got := s.resolver.BySpecialization(id.SpecializationArsitektur, models.BuildingBaru)
		s.Contains(templateIDs(got), "m14")
	})

	s.Run("mep gets active systems", func() {
		got := s.resolver.BySpecialization(id.SpecializationMEP, models.BuildingBaru)
		s.Equal([]string{"m22", "m24", "m25", "m26", "m27", "m28", "m29"}, templateIDs(got))
	})

	s.Run("building type filter applies to mep", func() {
		got := s.resolver.BySpecialization(id.SpecializationMEP, models.BuildingPascabencana)
		s.Equal([]string{"m22", "m24", "m25", "m26", "m27", "m29"}, templateIDs(got))
	})

	s.Run("supervisor sees everything including administrative", func() {
		got := s.resolver.BySpecialization(id.SpecializationBuildingInspection, models.BuildingAll)
		s.Len(got, 16)
		s.Equal("a1", got[0].ID)
	})

	s.Run("unknown specialization falls back to supervisor", func() {
		got := s.resolver.BySpecialization(id.Specialization("geodesi"), models.BuildingAll)
		s.Len(got, 16)
	})

	s.Run("legacy alias resolves before lookup", func() {
		got := s.resolver.BySpecialization(id.NormalizeSpecialization("Structural"), models.BuildingBaru)
		s.Equal([]string{"m21", "m210"}, templateIDs(got))
	})
}

func (s *ResolverSuite) TestBySpecializationIsDeterministic() {
	for _, spec := range []id.Specialization{id.SpecializationStruktur, id.SpecializationArsitektur, id.SpecializationMEP, id.SpecializationBuildingInspection} {
		first, err := json.Marshal(s.resolver.BySpecialization(spec, models.BuildingExisting))
		s.Require().NoError(err)
		second, err := json.Marshal(s.resolver.BySpecialization(spec, models.BuildingExisting))
		s.Require().NoError(err)
		s.Equal(first, second, "specialization %s", spec)
	}
}

func (s *ResolverSuite) TestKeywordFallback() {
	c, err := catalog.New(models.Config{
		Metadata: models.Metadata{LastUpdated: "2025-01-01"},
		ChecklistTemplates: []models.Template{
			{ID: "x1", Title: "Instalasi Listrik Darurat", Category: models.CategoryKeselamatan, Items: []models.Item{{ID: "i", Name: "n"}}},
			{ID: "x2", Title: "Perkuatan Struktur Atap", Category: models.CategoryKeandalan, Items: []models.Item{{ID: "i", Name: "n"}}},
			{ID: "x3", Title: "Lansekap", Description: "Tata Bangunan dan lingkungan", Category: models.CategoryKeandalan, Items: []models.Item{{ID: "i", Name: "n"}}},
		},
	})
	s.Require().NoError(err)
	r := New(c)

	s.Equal([]string{"x1"}, templateIDs(r.BySpecialization(id.SpecializationMEP, models.BuildingAll)))
	s.Equal([]string{"x2"}, templateIDs(r.BySpecialization(id.SpecializationStruktur, models.BuildingAll)))
	s.Equal([]string{"x1", "x3"}, templateIDs(r.BySpecialization(id.SpecializationArsitektur, models.BuildingAll)))
}

func (s *ResolverSuite) TestItemMatchesSpecialization() {
	item := func(section string, cat models.Category) models.FlatItem {
		return models.FlatItem{SectionID: section, Category: cat}
	}
	tests := []struct {
		name string
		item models.FlatItem
		spec id.Specialization
		want bool
	}{
		{"administrative hidden from supervisor", item("a1", models.CategoryAdministrative), id.SpecializationBuildingInspection, false},
		{"administrative hidden from arsitektur", item("a1", models.CategoryAdministrative), id.SpecializationArsitektur, false},
		{"arsitektur by category", item("m26", models.CategoryKeselamatan), id.SpecializationArsitektur, true},
		{"arsitektur by m1 prefix", item("m12", models.CategoryKeandalan), id.SpecializationArsitektur, true},
		{"arsitektur passive fire", item("m23", models.CategoryKeandalan), id.SpecializationArsitektur, true},
		{"arsitektur not active fire", item("m22", models.CategoryKeandalan), id.SpecializationArsitektur, false},
		{"struktur structure", item("m21", models.CategoryKeandalan), id.SpecializationStruktur, true},
		{"struktur disaster", item("m210", models.CategoryKeandalan), id.SpecializationStruktur, true},
		{"struktur not lightning", item("m24", models.CategoryKeandalan), id.SpecializationStruktur, false},
		{"mep active system", item("m25", models.CategoryKeandalan), id.SpecializationMEP, true},
		{"mep excludes structure", item("m21", models.CategoryKeandalan), id.SpecializationMEP, false},
		{"mep excludes disaster", item("m210", models.CategoryKeandalan), id.SpecializationMEP, false},
		{"mep excludes passive fire", item("m23", models.CategoryKeandalan), id.SpecializationMEP, false},
		{"mep excludes tata bangunan", item("m11", models.CategoryTataBangunan), id.SpecializationMEP, false},
		{"unknown fails open", item("m24", models.CategoryKeandalan), id.Specialization("geodesi"), true},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, ItemMatchesSpecialization(tt.item, tt.spec))
		})
	}
}

func (s *ResolverSuite) TestFlattenOrder() {
	c, err := catalog.Default()
	s.Require().NoError(err)
	m13, _ := c.Template("m13")
	m22, _ := c.Template("m22")

	flat := Flatten([]models.Template{m22, m13})

	s.Equal([]string{"m22_1", "m22_2", "m22_3", "m13_1", "m13_2", "m13_3"}, itemIDs(flat))
	s.Equal("m22", flat[0].TemplateID)
	s.Empty(flat[0].SubsectionTitle)
	s.Equal("Penampilan Bangunan", flat[3].SubsectionTitle)
	s.Equal("m13b", flat[4].SubsectionID)
	s.Equal("Arsitektur Bangunan Gedung", flat[5].TemplateTitle)
	s.Equal(models.CategoryTataBangunan, flat[5].Category)
}

func (s *ResolverSuite) TestFlattenMixedItemsAndSubsections() {
	tpl := models.Template{
		ID: "t", Title: "T", Category: models.CategoryKeandalan,
		Items: []models.Item{{ID: "d1"}, {ID: "d2", Category: models.CategoryKeselamatan}},
		Subsections: []models.Subsection{
			{ID: "s1", Title: "S1", Category: models.CategoryTataBangunan, Items: []models.Item{{ID: "s1a"}}},
			{ID: "s2", Title: "S2", Items: []models.Item{{ID: "s2a"}, {ID: "s2b"}}},
		},
	}
	flat := Flatten([]models.Template{tpl})

	s.Equal([]string{"d1", "d2", "s1a", "s2a", "s2b"}, itemIDs(flat))
	s.Equal(models.CategoryKeandalan, flat[0].Category)
	s.Equal(models.CategoryKeselamatan, flat[1].Category)
	s.Equal(models.CategoryTataBangunan, flat[2].Category)
	s.Equal(models.CategoryKeandalan, flat[3].Category)
}

func (s *ResolverSuite) TestItemsForInspector() {
	s.Run("struktur on new building", func() {
		got := s.resolver.ItemsForInspector(id.SpecializationStruktur, models.BuildingBaru)
		s.Equal([]string{"m21_1", "m21_2", "m21_3", "m21_4", "m210_1", "m210_2"}, itemIDs(got))
	})

	s.Run("struktur after a disaster adds crack survey", func() {
		got := s.resolver.ItemsForInspector(id.SpecializationStruktur, models.BuildingPascabencana)
		s.Contains(itemIDs(got), "m21_5")
	})

	s.Run("arsitektur picks up emergency lighting by item category", func() {
		got := itemIDs(s.resolver.ItemsForInspector(id.SpecializationArsitektur, models.BuildingExisting))
		s.Contains(got, "m26_2")
		s.NotContains(got, "m26_1")
		s.NotContains(got, "m13_3")
		s.NotContains(got, "m14_1")
		s.NotContains(got, "a1_1")
	})

	s.Run("mep drops overridden safety item", func() {
		got := itemIDs(s.resolver.ItemsForInspector(id.SpecializationMEP, models.BuildingBaru))
		s.Contains(got, "m26_1")
		s.NotContains(got, "m26_2")
		s.NotContains(got, "m21_1")
	})

	s.Run("supervisor never sees administrative items", func() {
		for _, it := range s.resolver.ItemsForInspector(id.SpecializationBuildingInspection, models.BuildingAll) {
			s.NotEqual(models.CategoryAdministrative, it.Category)
		}
	})
}

func (s *ResolverSuite) TestItemRequiresPhotoGeotag() {
	admin := models.CategoryAdministrative
	keandalan := models.CategoryKeandalan

	s.False(s.resolver.ItemRequiresPhotoGeotag("a1", "a1_1", nil))
	s.True(s.resolver.ItemRequiresPhotoGeotag("m21", "m21_1", nil))
	s.True(s.resolver.ItemRequiresPhotoGeotag("m11", "m11_1", nil))
	s.True(s.resolver.ItemRequiresPhotoGeotag("m31", "m31_1", nil))

	s.Run("explicit category wins", func() {
		s.False(s.resolver.ItemRequiresPhotoGeotag("m21", "m21_1", &admin))
		s.True(s.resolver.ItemRequiresPhotoGeotag("a1", "a1_1", &keandalan))
	})

	s.Run("unknown template defaults to true", func() {
		s.True(s.resolver.ItemRequiresPhotoGeotag("zz", "zz_1", nil))
	})
}

func (s *ResolverSuite) TestItemRequiresPhotoGeotagHonoursCategoryOverride() {
	off := false
	on := true
	c, err := catalog.New(models.Config{
		Metadata: models.Metadata{LastUpdated: "2025-01-01"},
		ChecklistTemplates: []models.Template{
			{ID: "m11", Title: "Fungsi", Category: models.CategoryTataBangunan, Items: []models.Item{
				{ID: "m11_1", Name: "a"},
				{ID: "m11_2", Name: "b", Category: models.CategoryKeandalan},
			}},
			{ID: "a1", Title: "Dokumen", Category: models.CategoryAdministrative, Items: []models.Item{{ID: "a1_1", Name: "c"}}},
		},
		PhotoRequirements: models.PhotoRequirements{
			PerCategory: map[models.Category]models.PhotoRequirement{
				models.CategoryTataBangunan:   {RequireGeotag: &off},
				models.CategoryAdministrative: {RequireGeotag: &on},
			},
		},
	})
	s.Require().NoError(err)
	r := New(c)

	s.False(r.ItemRequiresPhotoGeotag("m11", "m11_1", nil))
	s.True(r.ItemRequiresPhotoGeotag("m11", "m11_2", nil))
	s.False(r.ItemRequiresPhotoGeotag("a1", "a1_1", nil))
}

func (s *ResolverSuite) TestPhotoRequirements() {
	s.Run("category rule merged over global", func() {
		rule := s.resolver.PhotoRequirementFor(models.CategoryKeselamatan)
		s.Equal(2, rule.MinPhotos)
		s.Equal(5, rule.MaxPhotos)
		s.Equal([]string{"rambu", "jalur evakuasi"}, rule.RecommendedSubjects)
		s.Require().NotNil(rule.RequireGeotag)
		s.True(*rule.RequireGeotag)
	})

	s.Run("administrative rule never requires geotag", func() {
		rule := s.resolver.PhotoRequirementFor(models.CategoryAdministrative)
		s.Require().NotNil(rule.RequireGeotag)
		s.False(*rule.RequireGeotag)
	})

	s.Run("item rule follows item category override", func() {
		rule, err := s.resolver.ItemPhotoRequirement("m26", "m26_2", nil)
		s.Require().NoError(err)
		s.Equal([]string{"rambu", "jalur evakuasi"}, rule.RecommendedSubjects)
	})

	s.Run("unknown item is not found", func() {
		_, err := s.resolver.ItemPhotoRequirement("m26", "m26_9", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("no-signal policy", func() {
		p := s.resolver.NoSignalPolicy()
		s.True(p.AllowManualLocation)
		s.True(p.RequireReviewerApproval)
	})
}
