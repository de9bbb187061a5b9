package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Rynzie02/WebPlayer/internal/logger"
)

// Entry 一条已处理的指令记录。
type Entry struct {
	ID        int64
	Utterance string // 原始话语
	Source    string // 处理来源: remote / local
	Action    string // 规范动作（或空）
	Status    string // 处理后的状态文本
	CreatedAt string
}

// Store 指令历史的 SQLite 持久化存储。
// 只记录已处理的话语与结果；待执行的定时任务不持久化。
type Store struct {
	db   *sql.DB
	path string
}

// Open 打开或创建历史数据库。
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("设置 WAL 模式失败: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Infof("[history] 历史数据库已打开: %s", dbPath)
	return s, nil
}

func (s *Store) migrate() error {
	schema := `CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		utterance TEXT NOT NULL,
		source TEXT NOT NULL,
		action TEXT DEFAULT '',
		status TEXT DEFAULT '',
		created_at TEXT NOT NULL
	)`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	if _, err := s.db.Exec(
		`CREATE INDEX IF NOT EXISTS idx_commands_created_at ON commands(created_at)`); err != nil {
		logger.Warnf("[history] 创建索引失败: %v", err)
	}
	return nil
}

// Add 记录一条已处理的指令。
func (s *Store) Add(e Entry) error {
	createdAt := e.CreatedAt
	if createdAt == "" {
		createdAt = time.Now().Format("2006-01-02 15:04:05")
	}
	_, err := s.db.Exec(
		`INSERT INTO commands (utterance, source, action, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.Utterance, e.Source, e.Action, e.Status, createdAt)
	if err != nil {
		return fmt.Errorf("写入指令历史失败: %w", err)
	}
	return nil
}

// Recent 返回最近的 limit 条记录，按时间倒序。
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, utterance, source, action, status, created_at
		 FROM commands ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("查询指令历史失败: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Utterance, &e.Source, &e.Action, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("读取指令历史失败: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close 关闭数据库连接。
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
