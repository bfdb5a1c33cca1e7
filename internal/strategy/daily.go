package strategy

import (
	"math"
	"time"
)

// DailySpec describes a synthetic day/night control cycle.
type DailySpec struct {
	Days        int
	Interval    time.Duration // zero means 5 minutes
	Sunrise     int           // hour lights come on
	Photoperiod int           // lit hours per day
	DayTemp     float64
	NightTemp   float64
	PeakRad     float64 // half-sine peak at midday of the photoperiod
	DayCO2      float64
	NightCO2    float64
	Density     float64
}

// Daily generates a schedule at the spec interval: temperature and CO2
// switch between day and night setpoints over the photoperiod, and
// radiation follows a half-sine arc peaking mid-photoperiod.
func Daily(spec DailySpec) Schedule {
	interval := spec.Interval
	if interval == 0 {
		interval = 5 * time.Minute
	}
	perHour := int(time.Hour / interval)
	if perHour < 1 {
		perHour = 1
	}

	schedule := make(Schedule, 0, spec.Days*24*perHour)
	for day := 0; day < spec.Days; day++ {
		for hour := 0; hour < 24; hour++ {
			for s := 0; s < perHour; s++ {
				frac := float64(hour-spec.Sunrise) + float64(s)/float64(perHour)
				lit := frac >= 0 && frac < float64(spec.Photoperiod)

				p := Point{
					Temp:    spec.NightTemp,
					CO2:     spec.NightCO2,
					Density: spec.Density,
					Hour:    day*24 + hour,
				}
				if lit {
					p.Temp = spec.DayTemp
					p.CO2 = spec.DayCO2
					p.Rad = spec.PeakRad * math.Sin(math.Pi*frac/float64(spec.Photoperiod))
				}
				schedule = append(schedule, p)
			}
		}
	}
	return schedule
}
