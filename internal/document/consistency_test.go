// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/kinetics-engine/internal/ratelaw"
)

func bindIrreversible(t *testing.T, speciesID string, mapping map[string]string) *ratelaw.BoundModel {
	t.Helper()
	tmpl, ok := ratelaw.Lookup("mass-action-irreversible")
	require.True(t, ok)
	m, err := tmpl.Bind(map[string]ratelaw.Assignment{
		"substrate": ratelaw.ToSpecies(speciesID),
	}, mapping)
	require.NoError(t, err)
	return m
}

func TestCheckPasses(t *testing.T) {
	d := testDocument(t)
	require.NoError(t, d.SetModel("r1", bindReversible(t, nil)))
	require.NoError(t, d.SetModel("r2", bindIrreversible(t, "CEX", nil)))

	assert.NoError(t, Check(d))
}

func TestCheckUnknownSpecies(t *testing.T) {
	d := testDocument(t)

	tmpl, _ := ratelaw.Lookup("mass-action-irreversible")
	m, err := tmpl.Bind(map[string]ratelaw.Assignment{
		"substrate": ratelaw.ToSpecies("not-registered"),
	}, nil)
	require.NoError(t, err)
	require.NoError(t, d.SetModel("r1", m))

	err = Check(d)
	var cerr *ConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "not-registered", cerr.Symbol)
	assert.Contains(t, cerr.Reason, "not registered")
}

func TestCheckUnitConflictAcrossReactions(t *testing.T) {
	d := testDocument(t)

	// Two templates declare K_s with different units; both map it to the
	// same document symbol.
	a, err := ratelaw.New("a", "K_s * substrate", []ratelaw.ParameterSpec{{Name: "K_s", Unit: "1/min"}})
	require.NoError(t, err)
	b, err := ratelaw.New("b", "K_s * substrate", []ratelaw.ParameterSpec{{Name: "K_s", Unit: "1/s"}})
	require.NoError(t, err)

	ma, err := a.Bind(map[string]ratelaw.Assignment{"substrate": ratelaw.ToSpecies("CEX")}, nil)
	require.NoError(t, err)
	mb, err := b.Bind(map[string]ratelaw.Assignment{"substrate": ratelaw.ToSpecies("7-ADCA")}, nil)
	require.NoError(t, err)

	require.NoError(t, d.SetModel("r1", ma))
	require.NoError(t, d.SetModel("r2", mb))

	err = Check(d)
	var cerr *ConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "K_s", cerr.Symbol)
	assert.Contains(t, cerr.Reason, "disagree")
}

func TestCheckGlobalConflict(t *testing.T) {
	d := testDocument(t)
	require.NoError(t, d.UpsertGlobalParameter(GlobalParameter{Name: "K_1", Unit: "1/s"}))
	require.NoError(t, d.SetModel("r1", bindReversible(t, nil))) // binds K_1 with unit 1/min

	err := Check(d)
	var cerr *ConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "K_1", cerr.Symbol)
}

// Two reactions mapped onto the same symbol must export one shared global
// parameter, not two locals.
func TestPromoteSharedParameters(t *testing.T) {
	d := testDocument(t)
	require.NoError(t, d.SetModel("r1", bindIrreversible(t, "E·7-ADCA", map[string]string{"k_1": "K_n"})))
	require.NoError(t, d.SetModel("r2", bindIrreversible(t, "CEX", map[string]string{"k_1": "K_n"})))

	require.NoError(t, Check(d))
	require.NoError(t, d.PromoteSharedParameters())

	globals := d.GlobalParameters()
	require.Len(t, globals, 1)
	assert.Equal(t, "K_n", globals[0].Name)
	assert.Equal(t, "1/min", globals[0].Unit)
}

func TestPromoteSkipsUnsharedParameters(t *testing.T) {
	d := testDocument(t)
	require.NoError(t, d.SetModel("r1", bindReversible(t, nil)))

	require.NoError(t, d.PromoteSharedParameters())
	assert.Empty(t, d.GlobalParameters())
}
