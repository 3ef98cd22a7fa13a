package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Testblab/mindmap/internal/model"
)

// InsertGeneration 写入一次生成记录及其来源页（单事务）
func (s *Store) InsertGeneration(gen *model.Generation, sources []model.GenerationSource) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO generations (id, company, year, status, error_message,
			product_count, feature_count, page_count, duration_ms, tree_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, gen.ID, gen.Company, gen.Year, gen.Status, gen.ErrorMessage,
		gen.ProductCount, gen.FeatureCount, gen.PageCount, gen.DurationMS,
		gen.TreeJSON, gen.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert generation: %w", err)
	}

	if len(sources) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO generation_sources (generation_id, url, title, status, product_count, error_message)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, src := range sources {
			if _, err := stmt.Exec(gen.ID, src.URL, src.Title, src.Status, src.ProductCount, src.ErrorMessage); err != nil {
				return fmt.Errorf("failed to insert source: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetFreshGeneration 查找缓存期内最近一次成功生成，未命中返回 nil
func (s *Store) GetFreshGeneration(company, year string, ttl time.Duration) (*model.Generation, error) {
	cutoff := time.Now().Add(-ttl).UTC()

	row := s.db.QueryRow(`
		SELECT id, company, year, status, error_message,
			product_count, feature_count, page_count, duration_ms, tree_json, created_at
		FROM generations
		WHERE company = ? AND year = ? AND status = 'ok' AND created_at >= ?
		ORDER BY created_at DESC
		LIMIT 1
	`, company, year, cutoff)

	gen, err := scanGeneration(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query fresh generation failed: %w", err)
	}
	return gen, nil
}

// GetGeneration 按 ID 获取生成记录，不存在返回 nil
func (s *Store) GetGeneration(id string) (*model.Generation, error) {
	row := s.db.QueryRow(`
		SELECT id, company, year, status, error_message,
			product_count, feature_count, page_count, duration_ms, tree_json, created_at
		FROM generations
		WHERE id = ?
	`, id)

	gen, err := scanGeneration(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query generation failed: %w", err)
	}
	return gen, nil
}

// ListGenerations 分页列出生成记录（按时间倒序），keyword 过滤企业名
func (s *Store) ListGenerations(keyword string, page, pageSize int) ([]model.Generation, int, error) {
	where := ""
	args := []interface{}{}
	if keyword != "" {
		where = "WHERE company LIKE ?"
		args = append(args, "%"+keyword+"%")
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM generations "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count generations failed: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, company, year, status, error_message,
			product_count, feature_count, page_count, duration_ms, tree_json, created_at
		FROM generations
		%s
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, where)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query generations failed: %w", err)
	}
	defer rows.Close()

	generations := []model.Generation{}
	for rows.Next() {
		var gen model.Generation
		if err := rows.Scan(&gen.ID, &gen.Company, &gen.Year, &gen.Status, &gen.ErrorMessage,
			&gen.ProductCount, &gen.FeatureCount, &gen.PageCount, &gen.DurationMS,
			&gen.TreeJSON, &gen.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan generation failed: %w", err)
		}
		generations = append(generations, gen)
	}

	return generations, total, rows.Err()
}

// GetGenerationSources 获取一次生成的来源页列表
func (s *Store) GetGenerationSources(generationID string) ([]model.GenerationSource, error) {
	rows, err := s.db.Query(`
		SELECT id, generation_id, url, title, status, product_count, error_message
		FROM generation_sources
		WHERE generation_id = ?
		ORDER BY id
	`, generationID)
	if err != nil {
		return nil, fmt.Errorf("query generation sources failed: %w", err)
	}
	defer rows.Close()

	sources := []model.GenerationSource{}
	for rows.Next() {
		var src model.GenerationSource
		if err := rows.Scan(&src.ID, &src.GenerationID, &src.URL, &src.Title,
			&src.Status, &src.ProductCount, &src.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan generation source failed: %w", err)
		}
		sources = append(sources, src)
	}

	return sources, rows.Err()
}

// DeleteGeneration 删除一条生成记录及其来源页，返回是否存在
func (s *Store) DeleteGeneration(id string) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM generation_sources WHERE generation_id = ?", id); err != nil {
		return false, fmt.Errorf("failed to delete sources: %w", err)
	}

	result, err := tx.Exec("DELETE FROM generations WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete generation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return affected > 0, nil
}

// DeleteAllGenerations 清空全部生成记录，返回删除条数
func (s *Store) DeleteAllGenerations() (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM generation_sources"); err != nil {
		return 0, fmt.Errorf("failed to delete sources: %w", err)
	}

	result, err := tx.Exec("DELETE FROM generations")
	if err != nil {
		return 0, fmt.Errorf("failed to delete generations: %w", err)
	}
	affected, _ := result.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return affected, nil
}

// CountGenerations 生成记录总数
func (s *Store) CountGenerations() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM generations").Scan(&count); err != nil {
		return 0, fmt.Errorf("count generations failed: %w", err)
	}
	return count, nil
}

// LatestGeneration 最近一次生成记录，无记录返回 nil
func (s *Store) LatestGeneration() (*model.Generation, error) {
	row := s.db.QueryRow(`
		SELECT id, company, year, status, error_message,
			product_count, feature_count, page_count, duration_ms, tree_json, created_at
		FROM generations
		ORDER BY created_at DESC
		LIMIT 1
	`)

	gen, err := scanGeneration(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest generation failed: %w", err)
	}
	return gen, nil
}

func scanGeneration(row *sql.Row) (*model.Generation, error) {
	var gen model.Generation
	err := row.Scan(&gen.ID, &gen.Company, &gen.Year, &gen.Status, &gen.ErrorMessage,
		&gen.ProductCount, &gen.FeatureCount, &gen.PageCount, &gen.DurationMS,
		&gen.TreeJSON, &gen.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &gen, nil
}
