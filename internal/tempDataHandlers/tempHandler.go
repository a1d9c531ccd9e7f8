package tempdatahandlers

import "sync"

// Store: временные данные диалога по chat id (например, выбранное действие до
// выбора команды на inline-клавиатуре).
type Store struct {
	mu   sync.Mutex
	data map[int64]map[string]string
}

func New() *Store {
	return &Store{data: make(map[int64]map[string]string)}
}

// Установка временных данных
func (s *Store) SetTemporaryData(chatID int64, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[chatID]; !exists {
		s.data[chatID] = make(map[string]string)
	}
	s.data[chatID][key] = value
}

// Take возвращает значение и удаляет его.
func (s *Store) Take(chatID int64, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[chatID][key]
	if ok {
		delete(s.data[chatID], key)
	}
	return v, ok
}

// Удаление временных данных
func (s *Store) DeleteTemporaryData(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, chatID)
}
