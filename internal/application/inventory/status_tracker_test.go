package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func TestStatusTracker_Transiciones(t *testing.T) {
	tr := inventory.NewStatusTracker(10)

	st := tr.Queued(request("a", 1, 2, entity.ActionSale, 1))
	assert.Equal(t, entity.UpdateStatusQueued, st.Status)
	assert.Equal(t, int64(1), st.StoreID)

	tr.Applied("a", 42)
	got, ok := tr.Get("a")
	require.True(t, ok)
	assert.Equal(t, entity.UpdateStatusApplied, got.Status)
	require.NotNil(t, got.QuantityAfter)
	assert.Equal(t, int64(42), *got.QuantityAfter)

	tr.Queued(request("b", 1, 2, entity.ActionSale, 1))
	tr.Failed("b", "boom")
	got, _ = tr.Get("b")
	assert.Equal(t, entity.UpdateStatusFailed, got.Status)
	assert.Equal(t, "boom", got.Error)
}

func TestStatusTracker_DevuelveCopias(t *testing.T) {
	tr := inventory.NewStatusTracker(10)
	st := tr.Queued(request("a", 1, 1, entity.ActionSale, 1))
	st.Status = "alterado"

	got, _ := tr.Get("a")
	assert.Equal(t, entity.UpdateStatusQueued, got.Status)
}

func TestStatusTracker_DescartaLasMasAntiguas(t *testing.T) {
	tr := inventory.NewStatusTracker(2)
	tr.Queued(request("a", 1, 1, entity.ActionSale, 1))
	tr.Queued(request("b", 1, 1, entity.ActionSale, 1))
	tr.Queued(request("c", 1, 1, entity.ActionSale, 1))

	_, ok := tr.Get("a")
	assert.False(t, ok)
	_, ok = tr.Get("c")
	assert.True(t, ok)

	// Actualizar una solicitud descartada no la recrea.
	tr.Applied("a", 1)
	_, ok = tr.Get("a")
	assert.False(t, ok)
}

func TestStatusTracker_Forget(t *testing.T) {
	tr := inventory.NewStatusTracker(2)
	tr.Queued(request("a", 1, 1, entity.ActionSale, 1))
	tr.Forget("a")
	_, ok := tr.Get("a")
	assert.False(t, ok)

	tr.Queued(request("b", 1, 1, entity.ActionSale, 1))
	tr.Queued(request("c", 1, 1, entity.ActionSale, 1))
	_, ok = tr.Get("b")
	assert.True(t, ok, "Forget libera el lugar en la capacidad")
}

func TestStatusTracker_LecturasNoAlteranOrdenDeDescarte(t *testing.T) {
	tr := inventory.NewStatusTracker(2)
	tr.Queued(request("a", 1, 1, entity.ActionSale, 1))
	tr.Queued(request("b", 1, 1, entity.ActionSale, 1))

	_, ok := tr.Get("a")
	require.True(t, ok)
	tr.Applied("a", 3)

	tr.Queued(request("c", 1, 1, entity.ActionSale, 1))
	_, ok = tr.Get("a")
	assert.False(t, ok, "la más antigua se descarta aunque se haya consultado")
	_, ok = tr.Get("b")
	assert.True(t, ok)
}
