package plan

import (
	"fmt"
	"os"

	"github.com/dbops/repart"
	"gopkg.in/yaml.v3"
)

// Parse decodes a configuration document and validates every enum value
// at the boundary. Invalid values are a *repart.ConfigSchemaError, which
// is fatal for the whole document.
func Parse(data []byte) (*repart.Document, error) {
	var doc repart.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &repart.ConfigSchemaError{Field: "document", Detail: err.Error()}
	}

	if err := validateDocument(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// Serialize encodes a configuration document. Parse(Serialize(doc))
// returns a document equal field-for-field.
func Serialize(doc *repart.Document) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}
	return data, nil
}

// LoadDocument reads and parses a configuration document from disk.
func LoadDocument(path string) (*repart.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return Parse(data)
}

// SaveDocument serializes a configuration document to disk.
func SaveDocument(path string, doc *repart.Document) error {
	data, err := Serialize(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// validateDocument checks the shape a parsed document must have before
// any table-level work starts. Heuristic and catalog-dependent checks
// belong to the validate package; this is strictly the parse boundary.
func validateDocument(doc *repart.Document) error {
	for i := range doc.Tables {
		table := &doc.Tables[i]
		prefix := fmt.Sprintf("tables[%d]", i)

		if table.Owner == "" {
			return &repart.ConfigSchemaError{Field: prefix + ".owner", Detail: "owner is required"}
		}
		if table.TableName == "" {
			return &repart.ConfigSchemaError{Field: prefix + ".table_name", Detail: "table_name is required"}
		}

		state := table.CurrentState
		if state.PartitionType != "" && !state.PartitionType.Valid() {
			return &repart.ConfigSchemaError{
				Field:  prefix + ".current_state.partition_type",
				Detail: fmt.Sprintf("unknown partition type %q", state.PartitionType),
			}
		}
		for j, con := range state.Constraints {
			if !con.Type.Valid() {
				return &repart.ConfigSchemaError{
					Field:  fmt.Sprintf("%s.current_state.constraints[%d].type", prefix, j),
					Detail: fmt.Sprintf("unknown constraint type %q", con.Type),
				}
			}
		}

		target := table.TargetConfiguration
		if target.PartitionType != "" && !target.PartitionType.Valid() {
			return &repart.ConfigSchemaError{
				Field:  prefix + ".target_configuration.partition_type",
				Detail: fmt.Sprintf("unknown partition type %q", target.PartitionType),
			}
		}
		if target.IntervalType != "" && !target.IntervalType.Valid() {
			return &repart.ConfigSchemaError{
				Field:  prefix + ".target_configuration.interval_type",
				Detail: fmt.Sprintf("unknown interval type %q", target.IntervalType),
			}
		}
		if target.SubpartitionType != "" && !target.SubpartitionType.Valid() {
			return &repart.ConfigSchemaError{
				Field:  prefix + ".target_configuration.subpartition_type",
				Detail: fmt.Sprintf("unknown subpartition type %q", target.SubpartitionType),
			}
		}
	}

	return nil
}
