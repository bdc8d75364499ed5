package task

import "time"

// Task 服务端任务记录的本地缓存形状。服务端是唯一权威，本地副本只用于渲染。
// Task mirrors the server's task record. The server stays authoritative;
// the local copy exists for rendering only.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Complete    bool      `json:"complete"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Draft 创建/编辑任务时提交的字段
// Draft holds the fields submitted when creating or editing a task
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Complete    bool   `json:"complete"`
}

// Filter 任务列表的三态过滤器
// Filter is the three-way dashboard filter
type Filter int

const (
	FilterAll Filter = iota
	FilterActive
	FilterCompleted
)

func (f Filter) String() string {
	switch f {
	case FilterActive:
		return "active"
	case FilterCompleted:
		return "completed"
	default:
		return "all"
	}
}

// Stats 由任务列表推导出的统计信息，总是重新计算而不是存储
// Stats is derived from the in-memory list; recomputed, never stored
type Stats struct {
	Total     int
	Completed int
	Pending   int
}

// Apply 返回匹配过滤器的任务，纯函数
// Apply returns the tasks matching the filter; pure function
func (f Filter) Apply(tasks []Task) []Task {
	if f == FilterAll {
		return tasks
	}
	wantComplete := f == FilterCompleted
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Complete == wantComplete {
			out = append(out, t)
		}
	}
	return out
}

// Summarize 计算任务统计 / Summarize computes task statistics
func Summarize(tasks []Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Complete {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}
