package mockdata

// datasetSchema is the minimum shape a mock data file must have to be served
// in place of live data.
const datasetSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["city", "air_quality", "water_usage", "food_sustainability"],
  "properties": {
    "city": {"type": "string"},
    "air_quality": {
      "type": "object",
      "additionalProperties": {"type": "number"}
    },
    "water_usage": {
      "type": "object",
      "required": ["daily_usage_gal", "weekly_avg_gal"],
      "properties": {
        "daily_usage_gal": {"type": "number"},
        "weekly_avg_gal": {"type": "number"}
      }
    },
    "food_sustainability": {
      "type": "object",
      "required": ["sustainability_score"],
      "properties": {
        "sustainability_score": {"type": "number"}
      }
    }
  }
}`
