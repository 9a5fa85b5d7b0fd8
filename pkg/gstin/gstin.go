// Package gstin valida el GSTIN (Goods and Services Tax Identification Number) y
// extrae su código de estado.
//
// Formato (15 caracteres): 2 dígitos de estado + PAN (10) + número de entidad (1) + 'Z' + dígito de control.
package gstin

import (
	"fmt"
	"strings"
)

const charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Length longitud fija de un GSTIN.
const Length = 15

// Normalize elimina espacios y pasa a mayúsculas.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// StateCode devuelve los dos primeros dígitos del GSTIN si son un código de estado válido (01–38, 97, 99).
func StateCode(gstin string) (string, bool) {
	g := Normalize(gstin)
	if len(g) < 2 {
		return "", false
	}
	code := g[:2]
	if !IsValidStateCode(code) {
		return "", false
	}
	return code, true
}

// IsValidStateCode comprueba un código de estado GST de dos dígitos.
func IsValidStateCode(code string) bool {
	if len(code) != 2 || code[0] < '0' || code[0] > '9' || code[1] < '0' || code[1] > '9' {
		return false
	}
	n := int(code[0]-'0')*10 + int(code[1]-'0')
	return (n >= 1 && n <= 38) || n == 97 || n == 99
}

// Validate verifica longitud, estado, estructura y dígito de control.
func Validate(gstin string) error {
	g := Normalize(gstin)
	if len(g) != Length {
		return fmt.Errorf("gstin: longitud inválida %d (esperado %d)", len(g), Length)
	}
	if _, ok := StateCode(g); !ok {
		return fmt.Errorf("gstin: código de estado inválido %q", g[:2])
	}
	for i := 0; i < Length; i++ {
		if strings.IndexByte(charset, g[i]) < 0 {
			return fmt.Errorf("gstin: carácter inválido %q en posición %d", g[i], i+1)
		}
	}
	if g[13] != 'Z' {
		return fmt.Errorf("gstin: el carácter 14 debe ser 'Z'")
	}
	expected, err := CheckDigit(g[:14])
	if err != nil {
		return err
	}
	if g[14] != expected {
		return fmt.Errorf("gstin: dígito de control inválido: esperado %c, recibido %c", expected, g[14])
	}
	return nil
}

// CheckDigit calcula el dígito de control (módulo 36) para los 14 primeros caracteres.
func CheckDigit(first14 string) (byte, error) {
	if len(first14) != 14 {
		return 0, fmt.Errorf("gstin: se requieren 14 caracteres, se recibieron %d", len(first14))
	}
	sum := 0
	for i := 0; i < 14; i++ {
		v := strings.IndexByte(charset, first14[i])
		if v < 0 {
			return 0, fmt.Errorf("gstin: carácter inválido %q", first14[i])
		}
		factor := 1
		if i%2 == 1 {
			factor = 2
		}
		p := v * factor
		sum += p/36 + p%36
	}
	return charset[(36-sum%36)%36], nil
}

// stateCodes nombres de estados y territorios (en minúsculas) con su código GST.
var stateCodes = map[string]string{
	"jammu and kashmir":           "01",
	"himachal pradesh":            "02",
	"punjab":                      "03",
	"chandigarh":                  "04",
	"uttarakhand":                 "05",
	"uttaranchal":                 "05",
	"haryana":                     "06",
	"delhi":                       "07",
	"new delhi":                   "07",
	"nct of delhi":                "07",
	"rajasthan":                   "08",
	"uttar pradesh":               "09",
	"bihar":                       "10",
	"sikkim":                      "11",
	"arunachal pradesh":           "12",
	"nagaland":                    "13",
	"manipur":                     "14",
	"mizoram":                     "15",
	"tripura":                     "16",
	"meghalaya":                   "17",
	"assam":                       "18",
	"west bengal":                 "19",
	"jharkhand":                   "20",
	"odisha":                      "21",
	"orissa":                      "21",
	"chhattisgarh":                "22",
	"madhya pradesh":              "23",
	"gujarat":                     "24",
	"daman and diu":               "25",
	"dadra and nagar haveli":      "26",
	"maharashtra":                 "27",
	"karnataka":                   "29",
	"goa":                         "30",
	"lakshadweep":                 "31",
	"kerala":                      "32",
	"tamil nadu":                  "33",
	"puducherry":                  "34",
	"pondicherry":                 "34",
	"andaman and nicobar":         "35",
	"andaman and nicobar islands": "35",
	"telangana":                   "36",
	"andhra pradesh":              "37",
	"ladakh":                      "38",
}

// CodeForState devuelve el código GST de un estado por su nombre, sin distinguir mayúsculas
// ni espacios sobrantes. "&" equivale a "and".
func CodeForState(name string) (string, bool) {
	n := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	n = strings.ReplaceAll(n, "&", "and")
	code, ok := stateCodes[n]
	return code, ok
}
