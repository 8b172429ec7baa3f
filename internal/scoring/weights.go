package scoring

// Weights sum to 1.
type Weights struct {
	Title      float64 `json:"title"`
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Salary     float64 `json:"salary"`
	Location   float64 `json:"location"`
	Freshness  float64 `json:"freshness"`
}

var (
	BaseWeights = Weights{
		Title:      0.30,
		Skills:     0.35,
		Experience: 0.15,
		Salary:     0.05,
		Location:   0.10,
		Freshness:  0.05,
	}

	// SalaryWeights are used when both the vacancy and the profile carry a salary.
	SalaryWeights = Weights{
		Title:      0.25,
		Skills:     0.30,
		Experience: 0.15,
		Salary:     0.15,
		Location:   0.10,
		Freshness:  0.05,
	}
)

// Breakdown keeps every component score in [0,1] and the weights used to combine them.
type Breakdown struct {
	Title      float64 `json:"title"`
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Salary     float64 `json:"salary"`
	Location   float64 `json:"location"`
	Freshness  float64 `json:"freshness"`
	Weights    Weights `json:"weights"`
	Total      float64 `json:"total"`
}

func (b Breakdown) weighted() float64 {
	w := b.Weights
	return b.Title*w.Title +
		b.Skills*w.Skills +
		b.Experience*w.Experience +
		b.Salary*w.Salary +
		b.Location*w.Location +
		b.Freshness*w.Freshness
}
