package models

// Store is a physical retail location. A Store exclusively owns its Assets;
// removing the Store discards them.
type Store struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Status  Status  `json:"status"`
	Region  string  `json:"region"`
	Address string  `json:"address"`
	Assets  []Asset `json:"assets"`
}

// Clone returns a deep copy of s.
func (s Store) Clone() Store {
	assets := make([]Asset, len(s.Assets))
	for i := range s.Assets {
		assets[i] = s.Assets[i].Clone()
	}
	s.Assets = assets
	return s
}
