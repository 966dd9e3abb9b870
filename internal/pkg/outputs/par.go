/*
par.go PAR file encoding. A PAR file is the simulator's XML collection of parameters sets.
*/

package outputs

import (
	"context"
	"encoding/xml"
	"log"
)

const dynawoNamespace = "http://www.rte-france.com/dynawo"

type parametersSetCollection struct {
	XMLName xml.Name         `xml:"parametersSet"`
	Xmlns   string           `xml:"xmlns,attr"`
	Sets    []*ParametersSet `xml:"set"`
}

// MarshalPar encodes sets as a PAR document.
func MarshalPar(sets []*ParametersSet) ([]byte, error) {
	doc := parametersSetCollection{Xmlns: dynawoNamespace, Sets: sets}
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(data, '\n')...), nil
}

// UnmarshalPar decodes a PAR document.
func UnmarshalPar(data []byte) ([]*ParametersSet, error) {
	doc := parametersSetCollection{}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Sets, nil
}

// WritePar uploads the parameters sets as the run's PAR file.
func (w *Writer) WritePar(ctx context.Context, sets []*ParametersSet) error {
	data, err := MarshalPar(sets)
	if err != nil {
		return err
	}
	if err := w.upload(ctx, w.ParURL(), data); err != nil {
		return err
	}
	log.Printf("[Outputs] %d parameters sets written to %s", len(sets), w.ParURL())
	return nil
}
