package scene

// Sector groups the nodes of one spatial region. Cameras record the sector they are in.
type Sector struct {
	Frame
}

var _ Node = &Sector{}

// NewSector returns a detached, empty sector.
func NewSector() *Sector {
	s := &Sector{}
	s.init(KindSector, s)
	return s
}
