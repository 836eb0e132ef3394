// Package attributes implementa el reconciliador de schema attributes:
// decide por cada atributo objetivo si crearlo, saltarlo, limpiarlo o
// borrarlo, con soporte de dry-run y prefijo.
package attributes

// Definition es un atributo deseado: nombre y descripción. El prefijo se
// aplica recién al construir el nombre remoto, no acá.
type Definition struct {
	Name        string
	Description string
}

// Los dos nombres permanentemente excluidos: jamás se crean, limpian ni
// borran, sin importar flags ni listas adicionales.
var excludedNames = map[string]struct{}{
	"title":             {},
	"preferredLanguage": {},
}

// IsExcluded indica si el nombre está permanentemente excluido.
func IsExcluded(name string) bool {
	_, ok := excludedNames[name]
	return ok
}

// defaultDefinitions es el set inetOrgPerson fijo (12 entradas, orden de
// schema). Incluye las dos excluidas; el filtrado pasa en Sanitize.
var defaultDefinitions = []Definition{
	{"businessCategory", "The type of business performed by the organization."},
	{"carLicense", "Vehicle license plate or registration."},
	{"departmentNumber", "Identifies a specific department."},
	{"employeeNumber", "A numeric or alphanumeric ID assigned by the organization."},
	{"employeeType", "The nature of employment (e.g., Contractor, Intern, Temp)."},
	{"homePhone", "The user's home telephone number."},
	{"homePostalAddress", "The user's home address."},
	{"manager", "The name of the user's manager. (This does not update as LDAP Manager does)"},
	{"preferredLanguage", "The user's preferred written or spoken language."},
	{"roomNumber", "The user's office or room number."},
	{"secretary", "The name of the user's administrative assistant. (This does not update as LDAP Manager does)"},
	{"title", "The user's job title."},
}

// DefaultDefinitions retorna una copia del set default completo (12).
func DefaultDefinitions() []Definition {
	out := make([]Definition, len(defaultDefinitions))
	copy(out, defaultDefinitions)
	return out
}

// Sanitize filtra los nombres excluidos preservando el orden declarado.
// Se aplica a TODA lista de entrada, incluida la de atributos adicionales.
func Sanitize(defs []Definition) []Definition {
	out := make([]Definition, 0, len(defs))
	for _, d := range defs {
		if IsExcluded(d.Name) {
			continue
		}
		out = append(out, d)
	}
	return out
}
