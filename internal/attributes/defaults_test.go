package attributes

import "testing"

func TestDefaultDefinitions_SetCompleto(t *testing.T) {
	defs := DefaultDefinitions()
	if len(defs) != 12 {
		t.Fatalf("set default tiene %d entradas, esperaba 12", len(defs))
	}
	for _, d := range defs {
		if d.Name == "" || d.Description == "" {
			t.Fatalf("definición incompleta: %+v", d)
		}
	}

	// La copia no comparte backing array con el set interno.
	defs[0].Name = "mutado"
	if DefaultDefinitions()[0].Name == "mutado" {
		t.Fatalf("DefaultDefinitions devolvió el slice interno")
	}
}

func TestSanitize_FiltraExcluidosPreservandoOrden(t *testing.T) {
	got := Sanitize(DefaultDefinitions())
	if len(got) != 10 {
		t.Fatalf("Sanitize dejó %d entradas, esperaba 10", len(got))
	}

	want := []string{
		"businessCategory", "carLicense", "departmentNumber", "employeeNumber",
		"employeeType", "homePhone", "homePostalAddress", "manager",
		"roomNumber", "secretary",
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("posición %d: %q, esperaba %q", i, got[i].Name, name)
		}
	}
}

func TestSanitize_AplicaTambienAListasAdicionales(t *testing.T) {
	in := []Definition{
		{Name: "costCenter", Description: "x"},
		{Name: "title", Description: "x"},
		{Name: "preferredLanguage", Description: "x"},
		{Name: "badge", Description: "x"},
	}
	got := Sanitize(in)
	if len(got) != 2 || got[0].Name != "costCenter" || got[1].Name != "badge" {
		t.Fatalf("Sanitize sobre lista adicional: %+v", got)
	}
}

func TestIsExcluded(t *testing.T) {
	if !IsExcluded("title") || !IsExcluded("preferredLanguage") {
		t.Fatalf("los dos nombres reservados deben estar excluidos")
	}
	if IsExcluded("Title") {
		t.Fatalf("la exclusión es case-sensitive (los nombres de schema lo son)")
	}
	if IsExcluded("manager") {
		t.Fatalf("manager no está excluido")
	}
}
