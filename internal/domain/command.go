package domain

import "encoding/json"

// InternalCommand - команда для движка после разбора action.
type InternalCommand struct {
	Action  ActionType
	Token   string          // ID агента или сессии наблюдателя
	Payload json.RawMessage // Сырые данные (парсятся хендлером)
}
