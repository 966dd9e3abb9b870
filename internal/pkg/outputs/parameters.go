package outputs

import (
	"strconv"
)

const (
	origDataIIDM = "IIDM"

	TypeDouble = "DOUBLE"
	TypeBool   = "BOOL"
	TypeString = "STRING"
)

// Parameter is a literal value of a parameters set.
type Parameter struct {
	Type  string `xml:"type,attr"`
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Reference is a value read by the simulator from the static network.
type Reference struct {
	Type        string `xml:"type,attr"`
	Name        string `xml:"name,attr"`
	OrigData    string `xml:"origData,attr"`
	OrigName    string `xml:"origName,attr"`
	ComponentID string `xml:"componentId,attr,omitempty"`
}

// ParametersSet is one named set of a PAR file.
type ParametersSet struct {
	ID         string      `xml:"id,attr"`
	Parameters []Parameter `xml:"par"`
	References []Reference `xml:"reference"`
}

func NewParametersSet(id string) *ParametersSet {
	return &ParametersSet{ID: id, Parameters: make([]Parameter, 0), References: make([]Reference, 0)}
}

func (s *ParametersSet) AddDouble(name string, value float64) {
	s.Parameters = append(s.Parameters, Parameter{Type: TypeDouble, Name: name, Value: strconv.FormatFloat(value, 'g', -1, 64)})
}

func (s *ParametersSet) AddBool(name string, value bool) {
	s.Parameters = append(s.Parameters, Parameter{Type: TypeBool, Name: name, Value: strconv.FormatBool(value)})
}

func (s *ParametersSet) AddString(name, value string) {
	s.Parameters = append(s.Parameters, Parameter{Type: TypeString, Name: name, Value: value})
}

// AddReference adds a double reference to the static value origName, read on
// componentID when not empty.
func (s *ParametersSet) AddReference(name, origName, componentID string) {
	s.References = append(s.References, Reference{
		Type:        TypeDouble,
		Name:        name,
		OrigData:    origDataIIDM,
		OrigName:    origName,
		ComponentID: componentID,
	})
}

func (s *ParametersSet) HasParameter(name string) bool {
	_, ok := s.Parameter(name)
	return ok
}

func (s *ParametersSet) Parameter(name string) (Parameter, bool) {
	for _, p := range s.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

func (s *ParametersSet) Reference(name string) (Reference, bool) {
	for _, r := range s.References {
		if r.Name == name {
			return r, true
		}
	}
	return Reference{}, false
}
