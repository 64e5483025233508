package wizard

import (
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/BeatGrid/StrategyPipe/internal/models"
	"github.com/BeatGrid/StrategyPipe/internal/store"
)

// countingStore wraps a Store and records SaveStrategy calls.
type countingStore struct {
	store.Store
	mu    sync.Mutex
	saves []map[string]any
}

func (c *countingStore) SaveStrategy(userID, stageID string, data map[string]any, status models.StageStatus) error {
	c.mu.Lock()
	c.saves = append(c.saves, data)
	c.mu.Unlock()
	return c.Store.SaveStrategy(userID, stageID, data, status)
}

func (c *countingStore) saveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.saves)
}

func newTestSession(t *testing.T, stageID string) (*Session, *countingStore) {
	t.Helper()
	cs := &countingStore{Store: store.NewInMemoryStore()}
	s, err := NewSession(cs, "local", stageID, WithAutosaveInterval(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s, cs
}

func TestSeededDefaults(t *testing.T) {
	s, _ := newTestSession(t, "stage-1")
	defer s.Close()

	data := s.FormData()
	if v, ok := data["core_values"].([]any); !ok || len(v) != 0 {
		t.Errorf("expected multiselect default empty list, got %v", data["core_values"])
	}
	if data["mission_statement"] != "" {
		t.Errorf("expected text default empty string, got %v", data["mission_statement"])
	}
}

func TestSessionMarksStageStarted(t *testing.T) {
	s, cs := newTestSession(t, "stage-3")
	defer s.Close()

	rec, err := cs.GetStrategy("local", "stage-3")
	if err != nil {
		t.Fatalf("GetStrategy failed: %v", err)
	}
	if rec == nil || rec.Status != models.StageStatusInProgress {
		t.Errorf("expected in_progress after open, got %+v", rec)
	}
}

func TestRankedToggleShiftsRanksUp(t *testing.T) {
	s, _ := newTestSession(t, "stage-1")
	defer s.Close()

	for _, opt := range []string{"Urban", "Coastal"} {
		if err := s.ToggleOption("archetype", opt); err != nil {
			t.Fatalf("ToggleOption(%s) failed: %v", opt, err)
		}
	}
	v, _ := s.Value("archetype")
	ranked := models.AsRanked(v)
	if ranked.Primary != "Urban" || ranked.Secondary != "Coastal" {
		t.Fatalf("unexpected ranks before removal: %+v", ranked)
	}

	// Re-clicking the primary removes it and promotes the secondary.
	if err := s.ToggleOption("archetype", "Urban"); err != nil {
		t.Fatalf("ToggleOption failed: %v", err)
	}
	v, _ = s.Value("archetype")
	ranked = models.AsRanked(v)
	if ranked.Primary != "Coastal" || ranked.Secondary != "" || ranked.Tertiary != "" {
		t.Errorf("expected Coastal promoted with no gaps, got %+v", ranked)
	}
}

func TestRankedToggleReplacesLastSlotWhenFull(t *testing.T) {
	s, _ := newTestSession(t, "stage-1")
	defer s.Close()

	for _, opt := range []string{"Rebel", "Sage", "Lover"} {
		if err := s.ToggleOption("archetype", opt); err != nil {
			t.Fatalf("ToggleOption(%s) failed: %v", opt, err)
		}
	}
	if err := s.ToggleOption("archetype", "Jester"); err != nil {
		t.Fatalf("ToggleOption failed: %v", err)
	}
	v, _ := s.Value("archetype")
	ranked := models.AsRanked(v)
	if ranked.Primary != "Rebel" || ranked.Secondary != "Sage" || ranked.Tertiary != "Jester" {
		t.Errorf("expected Jester to replace the tertiary slot, got %+v", ranked)
	}
	if got := len(ranked.Slots()); got > models.DefaultMaxSelections {
		t.Errorf("rank slots exceed cap: %d", got)
	}
}

func TestPlainSelectReclickKeepsValue(t *testing.T) {
	s, _ := newTestSession(t, "stage-2")
	defer s.Close()

	if err := s.ToggleOption("age_range_main", "18-24"); err != nil {
		t.Fatalf("ToggleOption failed: %v", err)
	}
	if err := s.ToggleOption("age_range_main", "18-24"); err != nil {
		t.Fatalf("ToggleOption failed: %v", err)
	}
	v, _ := s.Value("age_range_main")
	if v != "18-24" {
		t.Errorf("re-click unset the value: %v", v)
	}
}

func TestToggleMultiValue(t *testing.T) {
	s, _ := newTestSession(t, "stage-1")
	defer s.Close()

	for _, v := range []string{"Authenticity", "Mystery"} {
		if err := s.ToggleMultiValue("core_values", v); err != nil {
			t.Fatalf("ToggleMultiValue failed: %v", err)
		}
	}
	if err := s.ToggleMultiValue("core_values", "Authenticity"); err != nil {
		t.Fatalf("ToggleMultiValue failed: %v", err)
	}
	v, _ := s.Value("core_values")
	if got := models.AsStringSlice(v); len(got) != 1 || got[0] != "Mystery" {
		t.Errorf("unexpected set after toggles: %v", got)
	}
}

func TestCustomOptionsRememberedForSession(t *testing.T) {
	s, _ := newTestSession(t, "stage-2")
	defer s.Close()

	if err := s.AddCustomOption("location", "Iceland"); err != nil {
		t.Fatalf("AddCustomOption failed: %v", err)
	}
	v, _ := s.Value("location")
	if got := models.AsStringSlice(v); len(got) != 1 || got[0] != "Iceland" {
		t.Errorf("custom value not applied: %v", got)
	}
	opts, err := s.Options("location")
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	found := false
	for _, o := range opts {
		if o == "Iceland" {
			found = true
		}
	}
	if !found {
		t.Errorf("custom option missing from option list: %v", opts)
	}

	// Custom values are rejected where the schema does not allow them.
	if err := s.AddCustomOption("audience_personas", "nope"); err != ErrCustomNotAllowed {
		t.Errorf("expected ErrCustomNotAllowed, got %v", err)
	}
}

func TestFocusedDateRangeNeverInverted(t *testing.T) {
	s, _ := newTestSession(t, "stage-5")
	defer s.Close()

	if err := s.FocusNew("campaign_list", nil); err != nil {
		t.Fatalf("FocusNew failed: %v", err)
	}
	// Second click before the first: endpoints swap.
	if err := s.PickFocusedDate("dates", "2024-06-20"); err != nil {
		t.Fatalf("PickFocusedDate failed: %v", err)
	}
	if err := s.PickFocusedDate("dates", "2024-06-10"); err != nil {
		t.Fatalf("PickFocusedDate failed: %v", err)
	}
	_, draft, ok := s.Focused()
	if !ok {
		t.Fatal("expected focused draft")
	}
	r := models.AsDateRange(draft["dates"])
	if r.From != "2024-06-10" || r.To != "2024-06-20" {
		t.Errorf("expected swapped range, got %+v", r)
	}
	if r.Complete() && r.From > r.To {
		t.Errorf("range stored inverted: %+v", r)
	}

	// A third click starts a new range.
	if err := s.PickFocusedDate("dates", "2024-07-01"); err != nil {
		t.Fatalf("PickFocusedDate failed: %v", err)
	}
	_, draft, _ = s.Focused()
	r = models.AsDateRange(draft["dates"])
	if r.From != "2024-07-01" || r.To != "" {
		t.Errorf("expected fresh range start, got %+v", r)
	}
}

func TestFocusedSaveAppendsAndLimits(t *testing.T) {
	s, _ := newTestSession(t, "stage-2")
	defer s.Close()

	addPersona := func(name string) error {
		if err := s.FocusNew("audience_personas", nil); err != nil {
			return err
		}
		if err := s.SetFocusedValue("name", name); err != nil {
			return err
		}
		return s.SaveFocused()
	}
	for _, name := range []string{"Hipster", "Gym Rat", "Collector"} {
		if err := addPersona(name); err != nil {
			t.Fatalf("adding persona %s failed: %v", name, err)
		}
	}
	v, _ := s.Value("audience_personas")
	items := models.AsItems(v)
	if len(items) != 3 {
		t.Fatalf("expected 3 personas, got %d", len(items))
	}
	for _, item := range items {
		if models.AsString(item["id"]) == "" {
			t.Errorf("saved item missing generated id: %v", item)
		}
	}
	// MaxItems is 3 for personas.
	if err := s.FocusNew("audience_personas", nil); err != ErrMaxItemsReached {
		t.Errorf("expected ErrMaxItemsReached, got %v", err)
	}
}

func TestFocusedCloseDiscardsDraft(t *testing.T) {
	s, _ := newTestSession(t, "stage-2")
	defer s.Close()

	if err := s.FocusNew("audience_personas", nil); err != nil {
		t.Fatalf("FocusNew failed: %v", err)
	}
	if err := s.SetFocusedValue("name", "Ghost"); err != nil {
		t.Fatalf("SetFocusedValue failed: %v", err)
	}
	s.CloseFocused()
	v, _ := s.Value("audience_personas")
	if items := models.AsItems(v); len(items) != 0 {
		t.Errorf("discarded draft leaked into items: %v", items)
	}
}

func TestFocusNewPrefillsGroupingKey(t *testing.T) {
	s, _ := newTestSession(t, "stage-6")
	defer s.Close()

	prefill := map[string]any{"campaign_assignment": []any{"Lead Single Rollout"}}
	if err := s.FocusNew("bucket_list", prefill); err != nil {
		t.Fatalf("FocusNew failed: %v", err)
	}
	_, draft, ok := s.Focused()
	if !ok {
		t.Fatal("expected focused draft")
	}
	if got := models.AsStringSlice(draft["campaign_assignment"]); len(got) != 1 || got[0] != "Lead Single Rollout" {
		t.Errorf("prefill missing: %v", draft)
	}
}

func TestWeeklyScheduleAddRemove(t *testing.T) {
	s, _ := newTestSession(t, "stage-9")
	defer s.Close()

	item := models.ScheduleItem{Type: models.ScheduleItemCampaign, Name: "Launch Week"}
	if err := s.AddScheduleItem("weekly_plan", "Monday", item); err != nil {
		t.Fatalf("AddScheduleItem failed: %v", err)
	}
	v, _ := s.Value("weekly_plan")
	schedule := models.AsWeekSchedule(v)
	monday := schedule["Monday"]
	if len(monday) != 1 || monday[0].Type != models.ScheduleItemCampaign || monday[0].Name != "Launch Week" {
		t.Fatalf("unexpected Monday bucket: %+v", monday)
	}

	if err := s.RemoveScheduleItem("weekly_plan", "Monday", monday[0].ID); err != nil {
		t.Fatalf("RemoveScheduleItem failed: %v", err)
	}
	v, _ = s.Value("weekly_plan")
	schedule = models.AsWeekSchedule(v)
	if len(schedule["Monday"]) != 0 {
		t.Errorf("expected empty Monday after removal, got %+v", schedule["Monday"])
	}

	if err := s.AddScheduleItem("weekly_plan", "Funday", item); err != ErrInvalidDay {
		t.Errorf("expected ErrInvalidDay, got %v", err)
	}
}

func TestAutosaveDebounceCoalescesEdits(t *testing.T) {
	cs := &countingStore{Store: store.NewInMemoryStore()}
	s, err := NewSession(cs, "local", "stage-1", WithAutosaveInterval(60*time.Millisecond))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer s.Close()

	base := cs.saveCount()
	texts := []string{"a", "ab", "abc"}
	for _, txt := range texts {
		if err := s.SetValue("mission_statement", txt); err != nil {
			t.Fatalf("SetValue failed: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	// All three edits landed inside one idle window.
	time.Sleep(120 * time.Millisecond)
	if got := cs.saveCount() - base; got != 1 {
		t.Fatalf("expected exactly 1 debounced save, got %d", got)
	}
	rec, _ := cs.GetStrategy("local", "stage-1")
	if rec.Data["mission_statement"] != "abc" {
		t.Errorf("save did not carry cumulative state: %v", rec.Data["mission_statement"])
	}
}

func TestCloseFlushesPendingEdits(t *testing.T) {
	cs := &countingStore{Store: store.NewInMemoryStore()}
	s, err := NewSession(cs, "local", "stage-1", WithAutosaveInterval(time.Hour))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	if err := s.SetValue("mission_statement", "never dropped"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	s.Close()

	rec, _ := cs.GetStrategy("local", "stage-1")
	if rec.Data["mission_statement"] != "never dropped" {
		t.Errorf("pending edit was dropped on close: %v", rec.Data)
	}
	if err := s.SetValue("mission_statement", "after close"); err != ErrSessionClosed {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
}

func TestSaveIsIdempotentForUnchangedData(t *testing.T) {
	cs := &countingStore{Store: store.NewInMemoryStore()}
	s, err := NewSession(cs, "local", "stage-2", WithAutosaveInterval(time.Hour))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	if err := s.FocusNew("audience_personas", nil); err != nil {
		t.Fatalf("FocusNew failed: %v", err)
	}
	if err := s.SetFocusedValue("name", "Hipster"); err != nil {
		t.Fatalf("SetFocusedValue failed: %v", err)
	}
	if err := s.SaveFocused(); err != nil {
		t.Fatalf("SaveFocused failed: %v", err)
	}
	if err := s.SaveAndExit(); err != nil {
		t.Fatalf("SaveAndExit failed: %v", err)
	}
	first, _ := cs.GetStrategy("local", "stage-2")

	// Reopen and save again without edits.
	s2, err := NewSession(cs, "local", "stage-2", WithAutosaveInterval(time.Hour))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	if err := s2.SaveAndExit(); err != nil {
		t.Fatalf("SaveAndExit failed: %v", err)
	}
	second, _ := cs.GetStrategy("local", "stage-2")

	if !reflect.DeepEqual(first.Data, second.Data) {
		t.Errorf("unchanged save mutated the record:\nfirst:  %v\nsecond: %v", first.Data, second.Data)
	}
	if items := models.AsItems(second.Data["audience_personas"]); len(items) != 1 {
		t.Errorf("expected 1 persona after resave, got %d", len(items))
	}
}

func TestNextBackSavesProgress(t *testing.T) {
	cs := &countingStore{Store: store.NewInMemoryStore()}
	s, err := NewSession(cs, "local", "stage-1", WithAutosaveInterval(time.Hour))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer s.Close()

	base := cs.saveCount()
	moved, err := s.Next()
	if err != nil || !moved {
		t.Fatalf("Next failed: moved=%v err=%v", moved, err)
	}
	if s.StepIndex() != 1 {
		t.Errorf("expected step 1, got %d", s.StepIndex())
	}
	if cs.saveCount() != base+1 {
		t.Errorf("expected a progress save on Next")
	}
	// Last step: Next reports no move.
	moved, err = s.Next()
	if err != nil || moved {
		t.Errorf("expected no move past last step, moved=%v err=%v", moved, err)
	}
	moved, err = s.Back()
	if err != nil || !moved {
		t.Fatalf("Back failed: moved=%v err=%v", moved, err)
	}
	moved, err = s.Back()
	if err != nil || moved {
		t.Errorf("expected no move before first step, moved=%v err=%v", moved, err)
	}
}

func TestSaveAndStartNext(t *testing.T) {
	cs := &countingStore{Store: store.NewInMemoryStore()}
	s, err := NewSession(cs, "local", "stage-1", WithAutosaveInterval(time.Hour))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	next, err := s.SaveAndStartNext()
	if err != nil {
		t.Fatalf("SaveAndStartNext failed: %v", err)
	}
	defer next.Close()
	if next.Config().ID != "stage-2" {
		t.Errorf("expected stage-2 session, got %s", next.Config().ID)
	}
	rec, _ := cs.GetStrategy("local", "stage-1")
	if rec.Status != models.StageStatusCompleted {
		t.Errorf("expected stage-1 completed, got %s", rec.Status)
	}
}

func TestSchedulePools(t *testing.T) {
	cs := &countingStore{Store: store.NewInMemoryStore()}
	seed := map[string]any{
		"campaign_list": []any{map[string]any{"name": "Lead Single Rollout"}},
	}
	if err := cs.Store.SaveStrategy("local", "stage-5", seed, models.StageStatusCompleted); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}
	bucketSeed := map[string]any{
		"bucket_list": []any{map[string]any{"name": "Studio Vlogs"}},
	}
	if err := cs.Store.SaveStrategy("local", "stage-6", bucketSeed, models.StageStatusCompleted); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}

	s, err := NewSession(cs, "local", "stage-9", WithAutosaveInterval(time.Hour))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer s.Close()

	campaigns, buckets, err := s.SchedulePools()
	if err != nil {
		t.Fatalf("SchedulePools failed: %v", err)
	}
	if len(campaigns) != 1 || campaigns[0] != "Lead Single Rollout" {
		t.Errorf("unexpected campaigns pool: %v", campaigns)
	}
	if len(buckets) != 1 || buckets[0] != "Studio Vlogs" {
		t.Errorf("unexpected buckets pool: %v", buckets)
	}
}

func TestPickDateTwoClickRange(t *testing.T) {
	tests := []struct {
		name   string
		clicks []string
		want   models.DateRange
	}{
		{"first click opens range", []string{"2024-06-20"}, models.DateRange{From: "2024-06-20"}},
		{"second click completes", []string{"2024-06-10", "2024-06-20"}, models.DateRange{From: "2024-06-10", To: "2024-06-20"}},
		{"earlier second click swaps", []string{"2024-06-20", "2024-06-10"}, models.DateRange{From: "2024-06-10", To: "2024-06-20"}},
		{"third click starts over", []string{"2024-06-10", "2024-06-20", "2024-07-01"}, models.DateRange{From: "2024-07-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t, "stage-4")
			defer s.Close()
			for _, d := range tt.clicks {
				if err := s.PickDate("era_dates", d); err != nil {
					t.Fatalf("PickDate(%s) failed: %v", d, err)
				}
			}
			v, _ := s.Value("era_dates")
			if got := models.AsDateRange(v); got != tt.want {
				t.Errorf("unexpected range: got %+v, want %+v", got, tt.want)
			}
		})
	}

	s, _ := newTestSession(t, "stage-4")
	defer s.Close()
	if err := s.PickDate("era_title", "2024-06-10"); err != ErrWrongFieldType {
		t.Errorf("expected ErrWrongFieldType, got %v", err)
	}
}

func TestAutosaveSnapshotIsolatedFromScheduleEdits(t *testing.T) {
	cs := &countingStore{Store: store.NewInMemoryStore()}
	s, err := NewSession(cs, "local", "stage-9", WithAutosaveInterval(time.Hour))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer s.Close()

	item := models.ScheduleItem{Type: models.ScheduleItemCampaign, Name: "Launch Week"}
	if err := s.AddScheduleItem("weekly_plan", "Monday", item); err != nil {
		t.Fatalf("AddScheduleItem failed: %v", err)
	}
	s.Flush()

	// Later edits must not leak into the already-captured snapshot.
	if err := s.AddScheduleItem("weekly_plan", "Monday", item); err != nil {
		t.Fatalf("AddScheduleItem failed: %v", err)
	}
	cs.mu.Lock()
	saved := cs.saves[len(cs.saves)-1]
	cs.mu.Unlock()
	if got := len(models.AsWeekSchedule(saved["weekly_plan"])["Monday"]); got != 1 {
		t.Errorf("flushed snapshot shares live schedule state: %d items", got)
	}
}

func TestAutosaveSnapshotIsolatedFromItemEdits(t *testing.T) {
	cs := &countingStore{Store: store.NewInMemoryStore()}
	s, err := NewSession(cs, "local", "stage-2", WithAutosaveInterval(time.Hour))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer s.Close()

	if err := s.FocusNew("audience_personas", nil); err != nil {
		t.Fatalf("FocusNew failed: %v", err)
	}
	if err := s.SetFocusedValue("name", "Ghost"); err != nil {
		t.Fatalf("SetFocusedValue failed: %v", err)
	}
	if err := s.SaveFocused(); err != nil {
		t.Fatalf("SaveFocused failed: %v", err)
	}
	s.Flush()

	if err := s.FocusItem("audience_personas", 0); err != nil {
		t.Fatalf("FocusItem failed: %v", err)
	}
	if err := s.SetFocusedValue("name", "Hipster"); err != nil {
		t.Fatalf("SetFocusedValue failed: %v", err)
	}
	if err := s.SaveFocused(); err != nil {
		t.Fatalf("SaveFocused failed: %v", err)
	}
	cs.mu.Lock()
	saved := cs.saves[len(cs.saves)-1]
	cs.mu.Unlock()
	items := models.AsItems(saved["audience_personas"])
	if len(items) != 1 || items[0]["name"] != "Ghost" {
		t.Errorf("flushed snapshot shares live item state: %+v", items)
	}
}

func TestScheduleEditsDuringDebouncedSaves(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "wizard.db")
	st, err := store.NewSQLiteStore(store.WithSQLiteDSN(dbPath))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer st.Close()

	s, err := NewSession(st, "local", "stage-9", WithAutosaveInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	item := models.ScheduleItem{Type: models.ScheduleItemCampaign, Name: "Launch Week"}
	for i := 0; i < 200; i++ {
		if err := s.AddScheduleItem("weekly_plan", "Monday", item); err != nil {
			t.Fatalf("AddScheduleItem failed: %v", err)
		}
	}
	v, _ := s.Value("weekly_plan")
	if got := len(models.AsWeekSchedule(v)["Monday"]); got != 200 {
		t.Fatalf("expected 200 live Monday items, got %d", got)
	}
	s.Close()

	// Saves overlap under the short interval, so only require that a
	// consistent snapshot landed.
	rec, err := st.GetStrategy("local", "stage-9")
	if err != nil {
		t.Fatalf("GetStrategy failed: %v", err)
	}
	schedule := models.AsWeekSchedule(rec.Data["weekly_plan"])
	if got := len(schedule["Monday"]); got == 0 || got > 200 {
		t.Errorf("unexpected persisted Monday item count: %d", got)
	}
	for _, it := range schedule["Monday"] {
		if it.Name != "Launch Week" {
			t.Fatalf("corrupted persisted item: %+v", it)
		}
	}
}
