package outbox

const habitCreatedSchema = `{
  "type": "object",
  "title": "HabitCreated",
  "properties": {
    "habit_id": {"type": "string"},
    "owner_id": {"type": "string"},
    "name": {"type": "string"},
    "category": {"type": "string"},
    "target_type": {"type": "string"},
    "target_value": {"type": "integer"},
    "created_at": {"type": "string", "format": "date-time"}
  },
  "required": ["habit_id", "owner_id", "name", "category", "target_type", "target_value", "created_at"],
  "additionalProperties": false
}`

const habitLoggedSchema = `{
  "type": "object",
  "title": "HabitLogged",
  "properties": {
    "habit_id": {"type": "string"},
    "owner_id": {"type": "string"},
    "date": {"type": "string", "format": "date"},
    "completed": {"type": "boolean"},
    "progress": {"type": "integer"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["habit_id", "owner_id", "date", "completed", "progress", "occurred_at"],
  "additionalProperties": false
}`
