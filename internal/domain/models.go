package domain

import "github.com/gotd/td/tg"

// UntitledDialog — заполнитель для диалогов без отображаемого имени.
const UntitledDialog = "(no title)"

// Variant — закрытый набор вариантов классификации сущности диалога.
// Для каждого диалога выбирается ровно один вариант.
type Variant int

const (
	// VariantUnknown — сущность, для которой нет специализированной
	// операции; доступно только общее удаление диалога.
	VariantUnknown Variant = iota
	// VariantBroadcast — канал или супергруппа.
	VariantBroadcast
	// VariantLegacyGroup — группа старого формата со своей операцией выхода.
	VariantLegacyGroup
	// VariantDirectOrBot — личная переписка с человеком или ботом.
	VariantDirectOrBot
)

func (v Variant) String() string {
	switch v {
	case VariantBroadcast:
		return "broadcast"
	case VariantLegacyGroup:
		return "legacy_group"
	case VariantDirectOrBot:
		return "direct_or_bot"
	default:
		return "unknown"
	}
}

// Outcome — исход обработки одного диалога. Диалог считается
// обработанным при любом исходе: счетчик прогона учитывает попытки,
// а не успехи.
type Outcome int

const (
	// OutcomeSuccess — действие выполнено с первой попытки.
	OutcomeSuccess Outcome = iota
	// OutcomeRetriedThenSucceeded — действие выполнено после повторов из-за rate limit.
	OutcomeRetriedThenSucceeded
	// OutcomeRetriesExhausted — лимит повторов исчерпан, диалог пропущен.
	OutcomeRetriesExhausted
	// OutcomeRecoverableAbandoned — протокольная ошибка, диалог пропущен без повторов.
	OutcomeRecoverableAbandoned
	// OutcomeFatalAbandoned — непредвиденная ошибка, диалог пропущен без повторов.
	OutcomeFatalAbandoned
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetriedThenSucceeded:
		return "retried_then_succeeded"
	case OutcomeRetriesExhausted:
		return "retries_exhausted"
	case OutcomeRecoverableAbandoned:
		return "recoverable_abandoned"
	default:
		return "fatal_abandoned"
	}
}

// Dialog — одна запись списка диалогов аккаунта.
// Запись создается потоком диалогов лениво и не изменяется ядром.
type Dialog struct {
	// Index — порядковый номер с единицы. Присваивается циклом обработки
	// в момент передачи диалога в работу и используется только в логах.
	Index int
	// Title — отображаемое имя. Пустое значение цикл заменяет на UntitledDialog.
	Title string
	// Peer — input-peer для общих операций над диалогом.
	// Может быть nil, если сущность не удалось сопоставить.
	Peer tg.InputPeerClass
	// Entity — сущность платформы: *tg.User, *tg.Chat, *tg.Channel
	// либо любой иной тип, классифицируемый как неизвестный.
	Entity any
}

// BackupMessage — одно сообщение в файле резервной копии.
type BackupMessage struct {
	ID        int    `json:"id"`
	Date      string `json:"date,omitempty"`
	Text      string `json:"text"`
	SenderID  int64  `json:"sender_id,omitempty"`
	ReplyToID int    `json:"reply_to_msg_id,omitempty"`
	HasMedia  bool   `json:"has_media"`
	MediaType string `json:"media_type,omitempty"`
}

// Member — участник диалога в файле резервной копии.
type Member struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	Bot       bool   `json:"is_bot"`
	Verified  bool   `json:"is_verified"`
	Premium   bool   `json:"is_premium"`
	Phone     string `json:"phone,omitempty"`
}
