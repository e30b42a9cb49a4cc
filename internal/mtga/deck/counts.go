package deck

import (
	"math"
	"sort"
	"strings"

	"github.com/ramonehamilton/commander-consistency/internal/mtga/capability"
)

var basicLandNames = map[string]bool{
	"plains":   true,
	"island":   true,
	"swamp":    true,
	"mountain": true,
	"forest":   true,
	"wastes":   true,
}

// IsBasicLand reports whether name is a basic land, snow-covered included.
func IsBasicLand(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, "snow-covered ")
	return basicLandNames[n]
}

// Counts are per-category physical card counts.
type Counts struct {
	Total         int `json:"total"`
	Lands         int `json:"lands"`
	BasicLands    int `json:"basic_lands"`
	NonbasicLands int `json:"nonbasic_lands"`
	Spells        int `json:"spells"`
	Ramp          int `json:"ramp"`
	BurstDraw     int `json:"burst_draw"`
	DrawEngines   int `json:"draw_engines"`
}

// DrawSources is the number of draw engines plus burst draw cards.
func (c Counts) DrawSources() int {
	return c.DrawEngines + c.BurstDraw
}

// Count tallies the composition's categories. A card counts as a land only
// when its capability record says so; names missing from the model are
// blank, even basic land names, so the counts agree with the simulators.
func Count(comp *Composition, model *capability.Model) Counts {
	var counts Counts
	for _, e := range comp.Cards {
		card := model.Lookup(e.Name)
		counts.Total += e.Count

		if card.IsLand() {
			counts.Lands += e.Count
			if IsBasicLand(e.Name) {
				counts.BasicLands += e.Count
			} else {
				counts.NonbasicLands += e.Count
			}
		} else {
			counts.Spells += e.Count
		}
		if card.IsRamp() {
			counts.Ramp += e.Count
		}
		if card.IsDrawEngine() {
			counts.DrawEngines += e.Count
		}
		if card.IsBurstDraw() {
			counts.BurstDraw += e.Count
		}
	}
	return counts
}

func listWhere(comp *Composition, model *capability.Model, pred func(*capability.Card) bool) []string {
	seen := make(map[string]bool)
	var names []string
	for _, e := range comp.Cards {
		if seen[e.Name] {
			continue
		}
		if pred(model.Lookup(e.Name)) {
			seen[e.Name] = true
			names = append(names, e.Name)
		}
	}
	sort.Strings(names)
	return names
}

// ListRamp returns the names of repeatable ramp cards.
func ListRamp(comp *Composition, model *capability.Model) []string {
	return listWhere(comp, model, (*capability.Card).IsRamp)
}

// ListBurstDraw returns the names of one-shot draw cards.
func ListBurstDraw(comp *Composition, model *capability.Model) []string {
	return listWhere(comp, model, (*capability.Card).IsBurstDraw)
}

// ListDrawEngines returns the names of repeatable draw cards.
func ListDrawEngines(comp *Composition, model *capability.Model) []string {
	return listWhere(comp, model, (*capability.Card).IsDrawEngine)
}

// ManaSourcesByColor counts, for each commander color, the lands and ramp
// pieces able to produce it. Rainbow sources count only toward commander colors.
func ManaSourcesByColor(comp *Composition, model *capability.Model) map[string]int {
	commander := comp.Commander.ColorIdentity
	sources := make(map[string]int, commander.Len())
	commander.Each(func(symbol string, _ capability.ColorSet) {
		sources[symbol] = 0
	})

	for _, e := range comp.Cards {
		card := model.Lookup(e.Name)
		if !card.IsLand() && !card.IsRamp() {
			continue
		}
		produced := card.ProducedColors(commander).Intersect(commander)
		produced.Each(func(symbol string, _ capability.ColorSet) {
			sources[symbol] += e.Count
		})
	}
	return sources
}

// TotalSources sums per-color source counts. A dual source counts once per
// color it produces.
func TotalSources(sources map[string]int) int {
	total := 0
	for _, n := range sources {
		total += n
	}
	return total
}

// Saturation is the pip demand per color over nonland spells.
type Saturation struct {
	Pips        map[string]int     `json:"pips"`
	Percentages map[string]float64 `json:"percentages"`
	TotalPips   int                `json:"total_pips"`
}

// ColorSaturation counts colored pips across nonland cards and converts them
// to percentages of the total. Zero total pips yields zero percentages.
func ColorSaturation(comp *Composition, model *capability.Model) Saturation {
	sat := Saturation{
		Pips:        make(map[string]int),
		Percentages: make(map[string]float64),
	}
	for _, e := range comp.Cards {
		card := model.Lookup(e.Name)
		if card.IsLand() {
			continue
		}
		for symbol, n := range card.Pips() {
			sat.Pips[symbol] += n * e.Count
			sat.TotalPips += n * e.Count
		}
	}
	for symbol, n := range sat.Pips {
		sat.Percentages[symbol] = Percent(n, sat.TotalPips)
	}
	return sat
}

// IdealColorSources splits totalSources across colors in proportion to pip
// demand, using largest-remainder rounding so the parts sum to totalSources.
func IdealColorSources(sat Saturation, totalSources int) map[string]int {
	ideal := make(map[string]int, len(sat.Pips))
	if sat.TotalPips == 0 || totalSources <= 0 {
		return ideal
	}

	type share struct {
		symbol    string
		remainder float64
	}
	shares := make([]share, 0, len(sat.Pips))
	assigned := 0
	for symbol, n := range sat.Pips {
		exact := float64(totalSources) * float64(n) / float64(sat.TotalPips)
		whole := int(math.Floor(exact))
		ideal[symbol] = whole
		assigned += whole
		shares = append(shares, share{symbol: symbol, remainder: exact - float64(whole)})
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].remainder != shares[j].remainder {
			return shares[i].remainder > shares[j].remainder
		}
		return shares[i].symbol < shares[j].symbol
	})
	for i := 0; assigned < totalSources; i++ {
		ideal[shares[i%len(shares)].symbol]++
		assigned++
	}
	return ideal
}

// Percent returns part/whole as a percentage, or 0 when whole is zero.
func Percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}
