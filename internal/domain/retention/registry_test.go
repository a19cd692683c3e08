package retention

import (
	"testing"
	"time"
)

func TestRegistry_CostLogIsCompliance(t *testing.T) {
	dt, ok := Lookup("ai_cost_logs")
	if !ok {
		t.Fatal("Lookup(ai_cost_logs) not found")
	}
	if dt.Class != ClassCompliance {
		t.Errorf("ai_cost_logs class = %s, want %s", dt.Class, ClassCompliance)
	}
	if want := 7 * 365 * 24 * time.Hour; dt.DefaultRetention != want {
		t.Errorf("ai_cost_logs retention = %v, want %v", dt.DefaultRetention, want)
	}
}

func TestRegistry_OffboardingIsNotTenantScoped(t *testing.T) {
	dt, ok := Lookup("offboarding_records")
	if !ok {
		t.Fatal("Lookup(offboarding_records) not found")
	}
	if dt.IsTenantScoped() {
		t.Error("offboarding_records reported tenant scoped")
	}
}

func TestRegistry_EveryEntryIsRoutable(t *testing.T) {
	for _, dt := range Registry() {
		if dt.Name == "" || dt.Table == "" || dt.DateColumn == "" {
			t.Errorf("data type %+v missing routing fields", dt)
		}
		if dt.Class != ClassOperational && dt.Class != ClassCompliance {
			t.Errorf("data type %s has unknown class %s", dt.Name, dt.Class)
		}
		if dt.DefaultRetention <= 0 {
			t.Errorf("data type %s has non-positive default retention", dt.Name)
		}
	}
}

func TestRegistryByClass_Partition(t *testing.T) {
	operational := RegistryByClass(ClassOperational)
	compliance := RegistryByClass(ClassCompliance)

	if len(operational)+len(compliance) != len(Registry()) {
		t.Errorf("class partition sizes %d+%d != registry size %d",
			len(operational), len(compliance), len(Registry()))
	}
	for _, dt := range compliance {
		if dt.Class != ClassCompliance {
			t.Errorf("RegistryByClass(compliance) returned %s with class %s", dt.Name, dt.Class)
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	if _, ok := Lookup("no_such_type"); ok {
		t.Error("Lookup(no_such_type) = ok")
	}
}
