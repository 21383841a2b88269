package units

import "fmt"

// CODATA 2018 values. The seven defining constants are exact.
var standardConstants = []struct {
	symbol, name, value string
}{
	{"Δν_Cs", "hyperfine transition frequency of Cs-133", "9192631770 Hz"},
	{"c", "speed of light in vacuum", "299792458 m s-1"},
	{"h", "Planck constant", "6.62607015E-34 J s"},
	{"e", "elementary charge", "1.602176634E-19 C"},
	{"k_B", "Boltzmann constant", "1.380649E-23 J K-1"},
	{"N_A", "Avogadro constant", "6.02214076E23 mol-1"},
	{"K_cd", "luminous efficacy", "683 lm W-1"},
	{"G", "Newtonian constant of gravitation", "6.67430(15)E-11 m3 kg-1 s-2"},
	{"m_e", "electron mass", "9.1093837015(28)E-31 kg"},
	{"m_p", "proton mass", "1.67262192369(51)E-27 kg"},
	{"R", "molar gas constant", "8.31446261815324 J mol-1 K-1"},
	{"F", "Faraday constant", "96485.3321233100184 C mol-1"},
}

func (r *Registry) loadConstants() error {
	for _, c := range standardConstants {
		if err := r.DefineConstant(c.symbol, c.name, c.value); err != nil {
			return err
		}
	}
	return nil
}

// DefineConstant adds a constant whose value is parsed with this registry.
func (r *Registry) DefineConstant(symbol, name, value string) error {
	q, err := r.ParseQuantity(value)
	if err != nil {
		return fmt.Errorf("constant %s: %w", symbol, err)
	}
	return r.AddConstant(Constant{Symbol: symbol, Name: name, Value: q})
}
