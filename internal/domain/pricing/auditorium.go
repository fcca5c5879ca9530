package pricing

import "fmt"

// ServiceSelection maps each service kind to the chosen option key. Empty or
// unknown options price at zero.
type ServiceSelection map[string]string

type HallInput struct {
	Duration   int
	AfterHours int
	ExtraHours int
	Services   ServiceSelection
}

// MatchPackage returns the smallest package covering the duration, or the largest
// one when nothing covers it. The second value is the hours left over.
func MatchPackage(cfg Config, duration int) (HallPackage, int) {
	for _, p := range cfg.HallPackages {
		if duration <= p.MaxHours {
			return p, 0
		}
	}
	last := cfg.HallPackages[len(cfg.HallPackages)-1]
	return last, duration - last.MaxHours
}

// QuoteHall prices an auditorium rental: package, after-hours surcharge and
// admin extra hours for the hall, then each selected service.
func QuoteHall(cfg Config, in HallInput) Quote {
	b := newBuilder(cfg.HallCurrency)
	if len(cfg.HallPackages) > 0 {
		pkg, remainder := MatchPackage(cfg, in.Duration)
		b.add(fmt.Sprintf("Hall rental: %s (up to %dh)", pkg.Name, pkg.MaxHours), pkg.Price)
		if remainder > 0 {
			b.add(fmt.Sprintf("Hours beyond package x%d", remainder), int64(remainder)*cfg.ExtraHourRate)
		}
	}
	if in.AfterHours > 0 {
		b.add(fmt.Sprintf("After-hours surcharge x%d", in.AfterHours), int64(in.AfterHours)*cfg.AfterHoursRate)
	}
	if in.ExtraHours > 0 {
		b.add(fmt.Sprintf("Extra hours x%d", in.ExtraHours), int64(in.ExtraHours)*cfg.ExtraHourRate)
	}
	for _, kind := range ServiceKinds {
		option := in.Services[kind]
		if option == "" || option == "none" || option == "0" {
			continue
		}
		b.add(fmt.Sprintf("%s: %s", kind, option), cfg.Services[kind][option])
	}
	b.add("Tax (0%)", 0)
	return Quote{
		Lines:   b.lines,
		Total:   b.sum(),
		Version: cfg.Version,
	}
}
