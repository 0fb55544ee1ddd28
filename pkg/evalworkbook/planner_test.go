package evalworkbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedRatingAllSlots(t *testing.T) {
	cfg := &Configuration{
		EvergreenMetrics: []MetricRow{weighted("Accuracy", 8), weighted("Fluency", 5), weighted("Omission/Addition", 4), weighted("Compliance", 6)},
		CustomMetrics:    []MetricRow{weighted("Tone", 5)},
	}
	p := NewFormulaPlanner(cfg)

	e, ok := p.WeightedRating(2)
	require.True(t, ok)
	assert.Equal(t,
		`IF(OR(COUNT(I2:L2)=0,TOTAL_WEIGHT=0),"",(I2*W_ACCURACY+J2*W_OMISSION_ADDITION+K2*W_COMPLIANCE+L2*W_FLUENCY+IF(ISNUMBER(O2),O2*W_CUSTOM,0))/TOTAL_WEIGHT)`,
		Render(e))

	refs := map[string]string{}
	for _, dn := range p.DefinedNames() {
		refs[dn.Name] = dn.RefersTo
	}
	assert.Equal(t, map[string]string{
		NameAccuracy:         "FORMULA_HELPER!$B$2",
		NameFluency:          "FORMULA_HELPER!$B$3",
		NameOmissionAddition: "FORMULA_HELPER!$B$4",
		NameCompliance:       "FORMULA_HELPER!$B$5",
		NameCustom:           "FORMULA_HELPER!$E$2",
		NameTotalWeight:      "FORMULA_HELPER!$G$2",
	}, refs)
}

func TestWeightedRatingSkipsNullWeights(t *testing.T) {
	cfg := &Configuration{
		EvergreenMetrics: []MetricRow{weighted("Accuracy", 0), unweighted("Fluency")},
		CustomMetrics:    []MetricRow{unweighted("Red Flags")},
	}
	p := NewFormulaPlanner(cfg)

	e, ok := p.WeightedRating(7)
	require.True(t, ok)
	assert.Equal(t, `IF(OR(COUNT(I7:L7)=0,TOTAL_WEIGHT=0),"",I7*W_ACCURACY/TOTAL_WEIGHT)`, Render(e))
	assert.Equal(t, []string{colAccuracy}, p.WeightedColumns())

	names := p.DefinedNames()
	require.Len(t, names, 2)
	assert.Equal(t, NameAccuracy, names[0].Name)
	assert.Equal(t, NameTotalWeight, names[1].Name)
}

func TestWeightedRatingWithoutWeights(t *testing.T) {
	p := NewFormulaPlanner(&Configuration{CustomMetrics: []MetricRow{unweighted("Red Flags")}})

	_, ok := p.WeightedRating(2)
	assert.False(t, ok)
}

func TestUnmatchedEvergreenFillsSlotsInOrder(t *testing.T) {
	p := NewFormulaPlanner(&Configuration{
		EvergreenMetrics: []MetricRow{weighted("Terminology", 3), weighted("Fluency", 5)},
	})
	assert.Equal(t, []string{colAccuracy, colFluency}, p.WeightedColumns())
	for _, dn := range p.DefinedNames() {
		if dn.Name == NameAccuracy {
			assert.Equal(t, "FORMULA_HELPER!$B$2", dn.RefersTo)
		}
		if dn.Name == NameFluency {
			assert.Equal(t, "FORMULA_HELPER!$B$3", dn.RefersTo)
		}
	}
}

func TestSegmentFormulas(t *testing.T) {
	p := NewFormulaPlanner(&Configuration{Terminology: map[string]string{TermSourceIssue: "Bad Input"}})

	assert.Equal(t, `IF(B4="","",LEN(B4)-LEN(SUBSTITUTE(B4," ",""))+1)`, Render(p.WordCount(4)))
	assert.Equal(t, `IF(E4=FORMULA_HELPER!$I$2,"-",D4)`, Render(p.ApplicableSourceCount(4)))
	assert.Equal(t, `IF(E4=FORMULA_HELPER!$I$3,D4,IF(E4="",D4,"-"))`, Render(p.ApplicableTargetCount(4)))
	assert.Equal(t, `IF(COUNT(I4:L4)=0,"",AVERAGE(I4:L4))`, Render(p.UnweightedRating(4)))
}

func TestValidations(t *testing.T) {
	p := NewFormulaPlanner(&Configuration{})
	body := Rows(2, 101)

	score, err := p.ScoreValidation(body)
	require.NoError(t, err)
	assert.Equal(t, "H2:L101 O2:O101", score.Sqref)
	assert.True(t, score.AllowBlank)

	pre := p.PreEvalValidation(body)
	assert.Equal(t, "E2:E101", pre.Sqref)
	assert.Equal(t, "list", pre.Type)
	assert.Equal(t, "FORMULA_HELPER!$I$2:$I$3", pre.Formula1)

	assert.Equal(t, []string{"H2:L101", "O2:O101"}, p.MissingScoreRanges(body))
}
