package crop

// DefaultParameters returns the stock greenhouse-lettuce coefficient
// set. Units assume state in grams per plant, radiation in W/m2, CO2 in
// ppm, temperature in degrees Celsius and rates per second.
func DefaultParameters() ParamSet {
	return ParamSet{
		"c_R":        40.0,
		"c_Q10_R":    2.0,
		"c_epsilon":  0.017,
		"c_w":        1.83e-3,
		"g_bnd":      0.007,
		"g_stm":      0.005,
		"c_car_1":    -1.32e-5,
		"c_car_2":    5.94e-4,
		"c_car_3":    -2.64e-3,
		"c_gr_max":   5e-6,
		"c_r":        1.0,
		"c_resp_sht": 3.47e-7,
		"c_resp_rt":  1.16e-7,
		"c_Q10_gr":   1.6,
		"c_Q10_resp": 2.0,
		"c_t":        0.15,
		"c_k":        0.9,
		"c_lar":      0.075,
		"c_a":        0.68,
		"c_b":        0.8,
	}
}
