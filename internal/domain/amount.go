package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Amount хранит цену или бюджет в исходном виде: число, строку с пробелами
// и запятой ("1 500,50") или пустое значение. Разбор выполняет matching.ParsePrice,
// сама сущность значение не интерпретирует.
type Amount struct {
	raw any
}

// NewAmount оборачивает произвольное значение цены.
func NewAmount(v any) Amount {
	if a, ok := v.(Amount); ok {
		return a
	}
	return Amount{raw: v}
}

// AmountFromText восстанавливает Amount из текстовой колонки БД (NULL → пусто).
func AmountFromText(s *string) Amount {
	if s == nil {
		return Amount{}
	}
	return Amount{raw: *s}
}

// Raw возвращает исходное значение.
func (a Amount) Raw() any {
	return a.raw
}

// IsSet сообщает, было ли значение указано вообще.
func (a Amount) IsSet() bool {
	return a.raw != nil
}

// Truthy сообщает, задано ли значение в смысле старых JSON-данных:
// null, пустая строка, ноль и false считаются отсутствием.
func (a Amount) Truthy() bool {
	return Truthy(a.raw)
}

// Text возвращает значение для записи в текстовую колонку (nil для пустого).
func (a Amount) Text() *string {
	if a.raw == nil {
		return nil
	}
	s := a.String()
	return &s
}

func (a Amount) String() string {
	switch v := a.raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// MarshalJSON отдаёт значение как есть: число остаётся числом, строка строкой.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.raw)
}

// UnmarshalJSON принимает число, строку, bool или null. Объекты и массивы
// ценой быть не могут и превращаются в пустое значение.
func (a *Amount) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch v.(type) {
	case nil, string, json.Number, bool:
		a.raw = v
	default:
		a.raw = nil
	}
	return nil
}

// Truthy повторяет правила "истинности" старых JSON-данных и формы сайта:
// пустая строка, ноль, false и null считаются ложью.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case Amount:
		return t.Truthy()
	}
	return true
}
