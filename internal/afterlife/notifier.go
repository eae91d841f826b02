package afterlife

import (
	"sync"

	"github.com/annel0/afterlife-world/internal/logging"
)

// NotifyLevel — уровень сообщения для инициатора операции
type NotifyLevel int

const (
	NotifyInfo NotifyLevel = iota
	NotifyError
)

// Notifier доставляет однострочные сообщения тому, кто запустил операцию:
// оператору в консоль, вызывающему REST API или в лог.
type Notifier interface {
	Notify(level NotifyLevel, text string)
}

// ConsoleNotifier пишет сообщения в лог компонента
type ConsoleNotifier struct {
	log *logging.Logger
}

// NewConsoleNotifier создаёт нотификатор, пишущий в лог afterlife
func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{log: logging.GetAfterlifeLogger()}
}

func (n *ConsoleNotifier) Notify(level NotifyLevel, text string) {
	if level == NotifyError {
		n.log.Error("%s", text)
		return
	}
	n.log.Info("%s", text)
}

// NotifyMessage — записанное сообщение для отложенной доставки
type NotifyMessage struct {
	Level NotifyLevel `json:"level"`
	Text  string      `json:"text"`
}

// CollectingNotifier накапливает сообщения для выдачи вызывающему
// (ответ REST API, проверки в тестах)
type CollectingNotifier struct {
	mu       sync.Mutex
	messages []NotifyMessage
}

func NewCollectingNotifier() *CollectingNotifier {
	return &CollectingNotifier{}
}

func (n *CollectingNotifier) Notify(level NotifyLevel, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, NotifyMessage{Level: level, Text: text})
}

// Messages возвращает копию накопленных сообщений
func (n *CollectingNotifier) Messages() []NotifyMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]NotifyMessage, len(n.messages))
	copy(out, n.messages)
	return out
}
