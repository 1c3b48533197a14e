package model

// Operator is the authenticated person running the audit session.
type Operator struct {
	Number string `json:"number"`
	Name   string `json:"name"`
}

// verifiers maps operator numbers to display names.
var verifiers = map[string]string{
	"41290": "BENÍTEZ HERNÁNDEZ MARIO",
	"41292": "ESCAMILLA VILLEGAS BRYAN ANTONY",
	"41282": "LÓPEZ QUINTANA ALDO",
	"41287": "MARIN ESPINOSA MIGUEL",
	"41289": "SANCHEZ ARELLANES RICARDO",
	"41293": "EDSON OSNAR TORRES JIMENEZ",
	"15990": "CHÁVEZ SÁNCHEZ ALFONSO",
	"17326": "DOMÍNGUEZ VAZQUEZ FRANCISCO JAVIER",
	"11885": "ESTRADA HERNÁNDEZ ROBERTO",
	"19328": "LÓPEZ ESTRADA LEOPOLDO",
	"44925": "MENDOZA SOLARES JOSE JUAN",
	"16990": "PÉREZ RODRÍGUEZ DANIEL",
	"16000": "PÉREZ YAÑEZ JUAN JOSE",
	"17812": "RODRÍGUEZ RAMÍREZ RENE",
	"44095": "LOPEZ JIMENEZ ALAN GABRIEL",
	"2875":  "VIZCAINO ROJAS ALVARO",
}

// LookupOperator returns the operator registered under number.
func LookupOperator(number string) (Operator, bool) {
	name, ok := verifiers[number]
	if !ok {
		return Operator{}, false
	}
	return Operator{Number: number, Name: name}, true
}
