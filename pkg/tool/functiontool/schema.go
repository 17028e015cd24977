// Copyright 2026 The AlpineAI Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package functiontool

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// generateSchema reflects an argument struct into a flat JSON schema object
// suitable for model tool declarations.
func generateSchema[T any]() (map[string]any, error) {
	reflector := &jsonschema.Reflector{
		// Required fields come from jsonschema tags, not omitempty absence.
		RequiredFromJSONSchemaTags: true,
		// Inline everything; models do not follow $ref.
		ExpandedStruct: true,
		DoNotReference: true,
	}

	schema := reflector.Reflect(new(T))

	schemaMap, err := schemaToMap(schema)
	if err != nil {
		return nil, err
	}

	// Keep only the parts tool declarations use.
	result := map[string]any{"type": "object"}
	if props, ok := schemaMap["properties"]; ok {
		result["properties"] = props
	} else {
		result["properties"] = map[string]any{}
	}
	if required, ok := schemaMap["required"]; ok {
		result["required"] = required
	}
	return result, nil
}

func schemaToMap(schema *jsonschema.Schema) (map[string]any, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	delete(result, "$schema")
	delete(result, "$id")
	return result, nil
}
