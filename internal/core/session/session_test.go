package session

import (
	"sync"
	"testing"
	"time"

	"kondate-planner/internal/core/plan"
	"kondate-planner/internal/core/planner"
	"kondate-planner/internal/core/presenter"
	"kondate-planner/internal/core/store"
	"kondate-planner/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlan() (plan.MealPlan, plan.MaterialsSummary) {
	return plan.Parse("**2024-03-01 (金):**\n朝食: 1.目玉焼き\n## 1週間分の材料まとめ:\n卵: 2個", []string{"朝食"})
}

func TestStateReplaceAndViews(t *testing.T) {
	st := NewState()
	assert.Equal(t, presenter.PageEmpty, st.Page().Kind)

	p, summary := samplePlan()
	st.ShowDetail("2024-03-01", "朝食")
	st.Replace(p, summary, &planner.DebugInfo{CategoryIDs: "30"})

	snap := st.Snapshot()
	assert.True(t, snap.HasPlan)
	assert.True(t, snap.View.IsGrid())
	assert.Equal(t, "30", snap.Debug.CategoryIDs)
	assert.Equal(t, presenter.PageGrid, st.Page().Kind)

	st.ShowDetail("2024-03-01", "朝食")
	assert.Equal(t, presenter.DetailSelector("2024-03-01", "朝食"), st.View())
	assert.Equal(t, presenter.PageDetail, st.Page().Kind)

	st.ShowDetail("2024-03-09", "夕食")
	assert.Equal(t, presenter.PageNotFound, st.Page().Kind)

	st.ShowGrid()
	assert.Equal(t, presenter.PageGrid, st.Page().Kind)

	st.Reset()
	assert.False(t, st.Snapshot().HasPlan)
	assert.Nil(t, st.Snapshot().Debug)
}

func TestStateLoadFailureKeepsCurrentPlan(t *testing.T) {
	st := NewState()
	p, summary := samplePlan()
	st.Replace(p, summary, nil)
	st.ShowDetail("2024-03-01", "朝食")
	before := st.Snapshot()

	err := st.Load([]byte(`{"meal_plan":{}}`))
	assert.ErrorIs(t, err, common.ErrMalformedDocument)

	after := st.Snapshot()
	assert.Equal(t, before, after)
}

func TestStateLoad(t *testing.T) {
	p, summary := samplePlan()
	data, err := store.Serialize(p, summary)
	require.NoError(t, err)

	st := NewState()
	st.RecordDebug(&planner.DebugInfo{CategoryIDs: "old"})
	require.NoError(t, st.Load(data))

	snap := st.Snapshot()
	assert.Equal(t, p, snap.Plan)
	assert.Equal(t, summary, snap.Summary)
	assert.Nil(t, snap.Debug)
}

func TestRecordDebugKeepsPlan(t *testing.T) {
	st := NewState()
	p, summary := samplePlan()
	st.Replace(p, summary, nil)

	st.RecordDebug(&planner.DebugInfo{RecipeCount: 0})
	assert.True(t, st.Snapshot().HasPlan)
}

func TestStateConcurrentAccess(t *testing.T) {
	st := NewState()
	p, summary := samplePlan()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				st.Replace(p, summary, nil)
				st.ShowDetail("2024-03-01", "朝食")
			} else {
				_ = st.Page()
				st.ShowGrid()
			}
		}(i)
	}
	wg.Wait()
	assert.True(t, st.Snapshot().HasPlan)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(2, time.Hour)

	id, st, created := r.GetOrCreate("")
	assert.True(t, created)
	assert.NotEmpty(t, id)

	again, st2, created := r.GetOrCreate(id)
	assert.False(t, created)
	assert.Equal(t, id, again)
	assert.Same(t, st, st2)

	_, _, created = r.GetOrCreate("unknown")
	assert.True(t, created)
	assert.Equal(t, 2, r.Len())

	r.Create()
	assert.Equal(t, 2, r.Len())
	_, ok := r.Get(id)
	assert.False(t, ok, "least recently used session is evicted")

	r.Remove("missing")
}

func TestRegistryExpires(t *testing.T) {
	r := NewRegistry(10, 20*time.Millisecond)
	id, _ := r.Create()

	time.Sleep(60 * time.Millisecond)
	_, ok := r.Get(id)
	assert.False(t, ok)
}
