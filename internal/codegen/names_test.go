package codegen

import "testing"

func TestExportedName(t *testing.T) {
	cases := map[string]string{
		"ENGINE_STATUS":  "EngineStatus",
		"RPM":            "Rpm",
		"check-engine":   "CheckEngine",
		"Line Pressure":  "LinePressure",
		"4WD_ACTIVE":     "X4wdActive",
		"":               "Field",
		"__":             "Field",
		"coolant_temp_c": "CoolantTempC",
	}
	for in, want := range cases {
		if got := exportedName(in); got != want {
			t.Fatalf("exportedName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUnexportedName(t *testing.T) {
	if got := unexportedName("ENGINE_STATUS"); got != "engineStatus" {
		t.Fatalf("unexportedName = %q, want engineStatus", got)
	}
}
