package models

// Rank is the collimation stage of a collimator.
type Rank int

const (
	Primary Rank = iota
	Secondary
	Tertiary
)

var rankNames = [...]string{"primary", "secondary", "tertiary"}

func (r Rank) String() string {
	if int(r) >= 0 && int(r) < len(rankNames) {
		return rankNames[r]
	}
	return "unknown"
}

// Axis is the plane a collimator's jaws close in.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	switch a {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return "unknown"
}

// Classification is derived once per collimator from its name.
type Classification struct {
	Rank Rank
	Axis Axis
}

func (c Classification) String() string { return c.Rank.String() + "/" + c.Axis.String() }
