package routing

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// topologyFile is the YAML schema for a tray network definition.
type topologyFile struct {
	Trays []struct {
		ID       string  `yaml:"id"`
		Fill     float64 `yaml:"fill"`
		Capacity int     `yaml:"capacity"`
	} `yaml:"trays"`
	Equipment []string `yaml:"equipment"`
	Edges     []struct {
		From     string  `yaml:"from"`
		To       string  `yaml:"to"`
		Distance float64 `yaml:"distance"`
	} `yaml:"edges"`
}

// LoadNetwork reads a tray network definition from a YAML file.
func LoadNetwork(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "routing: read topology %s", path)
	}
	return ParseNetwork(data)
}

// ParseNetwork builds a Network from YAML topology data.
func ParseNetwork(data []byte) (*Network, error) {
	var tf topologyFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, eris.Wrap(err, "routing: parse topology")
	}

	n := NewNetwork()
	for _, t := range tf.Trays {
		if t.ID == "" {
			return nil, eris.New("routing: topology tray with empty id")
		}
		if t.Fill < 0 || t.Fill > 100 {
			return nil, eris.Errorf("routing: tray %s fill %v out of range [0, 100]", t.ID, t.Fill)
		}
		n.AddTray(t.ID, t.Fill, t.Capacity)
	}
	for _, id := range tf.Equipment {
		if id == "" {
			return nil, eris.New("routing: topology equipment with empty id")
		}
		n.AddEquipment(id)
	}
	for _, e := range tf.Edges {
		if err := n.Connect(e.From, e.To, e.Distance); err != nil {
			return nil, err
		}
	}

	if len(n.nodes) == 0 {
		return nil, eris.New("routing: topology defines no nodes")
	}

	return n, nil
}
