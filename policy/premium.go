package policy

// AgeFactor is the age loading added to the base rate.
func AgeFactor(age int) float64 {
	switch {
	case age < 30:
		return 0.0
	case age < 45:
		return 0.005
	case age < 60:
		return 0.01
	default:
		return 0.02
	}
}

// VehicleFactor is the vehicle age loading for Auto policies.
func VehicleFactor(vehicleAge int) float64 {
	switch {
	case vehicleAge <= 2:
		return 0.0
	case vehicleAge <= 5:
		return 0.005
	default:
		return 0.01
	}
}

// Premium computes the premium for r, rounded half-up to cents.
// Unknown policy types price at zero.
func Premium(r Record) float64 {
	age := AgeFactor(r.Age)

	var premium float64
	switch r.Type {
	case Life:
		premium = r.SumInsured * (0.02 + age)
	case Health:
		premium = r.SumInsured * (0.03 + age*1.5)
	case Auto:
		premium = r.SumInsured * (0.05 + age + VehicleFactor(r.VehicleAge))
	default:
		premium = 0.0
	}
	return RoundCents(premium)
}

// RoundCents rounds to two decimals by adding half a cent and truncating
// toward zero. Negative inputs therefore round toward zero, not away from it.
func RoundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100.0
}
