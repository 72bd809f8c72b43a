package validation

// SearchRequestSchema describes the POST /api/search body. Field-level rules
// for filter conditions (catalog membership, value kinds) live in the models
// package; this schema only guards the shape.
const SearchRequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "query": {"type": "string", "maxLength": 200},
    "page": {"type": "integer"},
    "limit": {"type": "integer"},
    "sort": {
      "type": "object",
      "required": ["field", "direction"],
      "properties": {
        "field": {"type": "string"},
        "direction": {"type": "string", "enum": ["asc", "desc"]},
        "label": {"type": "string"},
        "displayName": {"type": "string"}
      }
    },
    "origin": {
      "type": "object",
      "required": ["lat", "lng"],
      "additionalProperties": false,
      "properties": {
        "lat": {"type": "number", "minimum": -90, "maximum": 90},
        "lng": {"type": "number", "minimum": -180, "maximum": 180}
      }
    },
    "filters": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "searchQuery": {"type": "string", "maxLength": 200},
        "category": {"type": "string"},
        "location": {"type": "string"},
        "ecoTags": {"type": "array", "items": {"type": "string"}},
        "nomadFeatures": {"type": "array", "items": {"type": "string"}},
        "minRating": {"type": "number", "minimum": 0, "maximum": 5},
        "maxPriceRange": {"type": "string", "pattern": "^\\${1,4}$"},
        "combinationOperator": {"type": "string", "enum": ["AND", "OR"]},
        "combinations": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["conditions", "operator"],
            "properties": {
              "operator": {"type": "string", "enum": ["AND", "OR"]},
              "isEnabled": {"type": "boolean"},
              "label": {"type": "string"},
              "conditions": {
                "type": "array",
                "items": {
                  "type": "object",
                  "required": ["field", "value"],
                  "properties": {
                    "field": {"type": "string"},
                    "value": {"type": ["string", "number", "boolean"]},
                    "operator": {"type": "string", "enum": ["AND", "OR"]}
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`
