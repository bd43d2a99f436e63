package models

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cerebrone-ai/video-content-creation-agent/config"

	_ "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *sql.DB
var GormDB *gorm.DB

func InitDB() {
	if config.AppConfig == nil {
		log.Fatal("config.AppConfig is nil, call config.InitConfig first")
	}
	dsn := config.AppConfig.MySQL.DSN
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("打开数据库失败: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		log.Fatalf("连接数据库失败: %v", err)
	}

	DB = db
	GormDB, err = gorm.Open(mysql.New(mysql.Config{
		Conn: DB,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("GORM 初始化失败: %v", err)
	}

	log.Println("数据库连接成功 (Native SQL + GORM)")

	// 自动建表（读取 doc/sql/VideoAgent.sql）
	b, err := os.ReadFile("doc/sql/VideoAgent.sql")
	if err != nil {
		log.Printf("读取 SQL 文件失败（跳过建表）: %v", err)
		return
	}
	sqls := strings.Split(string(b), ";")
	for _, s := range sqls {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := DB.Exec(s); err != nil {
			log.Printf("执行建表语句失败: %v ; sql: %s", err, s)
		}
	}
}

// ============================================================================
// VideoTask CRUD
// ============================================================================

func CreateVideoTask(t *VideoTask) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	projectData, _ := json.Marshal(t.ProjectData)
	shots := t.Shots
	if shots == nil {
		shots = ShotList{}
	}
	shotsBytes, _ := json.Marshal(shots)

	_, err := DB.Exec(`INSERT INTO video_task (id, status, progress, project_data, shots, background_music_url, error, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Status, t.Progress, projectData, shotsBytes, t.BackgroundMusicURL, t.Error, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

const videoTaskColumns = "id, status, progress, project_data, shots, background_music_url, error, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanVideoTask 单行/列表查询共用的扫描逻辑（NULL 列和 JSON 列的处理只写一遍）
func scanVideoTask(row rowScanner) (VideoTask, error) {
	var t VideoTask
	var projectBytes, shotsBytes []byte
	var musicNull, errorNull sql.NullString
	var createdAt, updatedAt sql.NullTime

	if err := row.Scan(&t.ID, &t.Status, &t.Progress, &projectBytes, &shotsBytes, &musicNull, &errorNull, &createdAt, &updatedAt); err != nil {
		return t, err
	}

	_ = json.Unmarshal(projectBytes, &t.ProjectData)
	if len(shotsBytes) > 0 {
		_ = json.Unmarshal(shotsBytes, &t.Shots)
	}
	if musicNull.Valid {
		t.BackgroundMusicURL = musicNull.String
	}
	if errorNull.Valid {
		t.Error = errorNull.String
	}
	if createdAt.Valid {
		t.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		t.UpdatedAt = updatedAt.Time
	}
	return t, nil
}

func GetVideoTaskByID(id string) (VideoTask, error) {
	row := DB.QueryRow(`SELECT `+videoTaskColumns+` FROM video_task WHERE id = ?`, id)
	return scanVideoTask(row)
}

func ListVideoTasks() ([]VideoTask, error) {
	rows, err := DB.Query(`SELECT ` + videoTaskColumns + ` FROM video_task ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []VideoTask
	for rows.Next() {
		t, err := scanVideoTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func DeleteVideoTaskByID(id string) error {
	result, err := DB.Exec(`DELETE FROM video_task WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateVideoTaskStatus 更新任务状态/进度/镜头/音乐/错误（部分字段允许为空）。
// 所有写入都是整字段 last-writer-wins，shots 永远整组覆盖。
func UpdateVideoTaskStatus(id string, status string, progress *int, shots ShotList, musicURL *string, errStr *string) error {
	sets := []string{}
	args := []interface{}{}

	if status != "" {
		sets = append(sets, "status = ?")
		args = append(args, status)
	}
	if progress != nil {
		sets = append(sets, "progress = ?")
		args = append(args, *progress)
	}
	if shots != nil {
		b, _ := json.Marshal(shots)
		sets = append(sets, "shots = ?")
		args = append(args, b)
	}
	if musicURL != nil {
		sets = append(sets, "background_music_url = ?")
		args = append(args, *musicURL)
	}
	if errStr != nil {
		sets = append(sets, "error = ?")
		args = append(args, *errStr)
	}

	if len(sets) == 0 {
		// 仅更新时间戳
		_, err := DB.Exec(`UPDATE video_task SET updated_at = ? WHERE id = ?`, time.Now(), id)
		return err
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now())

	query := fmt.Sprintf("UPDATE video_task SET %s WHERE id = ?", strings.Join(sets, ", "))
	args = append(args, id)

	_, err := DB.Exec(query, args...)
	return err
}

// UpdateVideoTaskShots 整组覆盖 shots 列（GORM Updates map 风格）
func UpdateVideoTaskShots(id string, shots ShotList) error {
	b, _ := json.Marshal(shots)
	return GormDB.Model(&VideoTask{}).Where("id = ?", id).Updates(map[string]interface{}{
		"shots":      b,
		"updated_at": time.Now(),
	}).Error
}

// ============================================================================
// SingleGenerationTask CRUD
// ============================================================================

func CreateSingleTask(t *SingleGenerationTask) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	reqBytes, _ := json.Marshal(t.RequestData)
	_, err := DB.Exec(`INSERT INTO single_generation_task (id, type, status, request_data, url, error, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Type, t.Status, reqBytes, t.URL, t.Error, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func GetSingleTaskByID(id string) (SingleGenerationTask, error) {
	var t SingleGenerationTask
	row := DB.QueryRow(`SELECT id, type, status, request_data, url, error, created_at, updated_at FROM single_generation_task WHERE id = ?`, id)

	var reqBytes []byte
	var urlNull, errorNull sql.NullString
	var createdAt, updatedAt sql.NullTime

	if err := row.Scan(&t.ID, &t.Type, &t.Status, &reqBytes, &urlNull, &errorNull, &createdAt, &updatedAt); err != nil {
		return t, err
	}

	_ = json.Unmarshal(reqBytes, &t.RequestData)
	if urlNull.Valid {
		t.URL = urlNull.String
	}
	if errorNull.Valid {
		t.Error = errorNull.String
	}
	if createdAt.Valid {
		t.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		t.UpdatedAt = updatedAt.Time
	}
	return t, nil
}

func UpdateSingleTaskStatus(id string, status string, url *string, errStr *string) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if url != nil {
		updates["url"] = *url
	}
	if errStr != nil {
		updates["error"] = *errStr
	}
	return GormDB.Model(&SingleGenerationTask{}).Where("id = ?", id).Updates(updates).Error
}

// ============================================================================
// VideoExport CRUD
// ============================================================================

func CreateVideoExport(e *VideoExport) error {
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now

	trackBytes, _ := json.Marshal(e.Tracks)
	_, err := DB.Exec(`INSERT INTO video_export (id, video_id, status, tracks, video_url, thumbnail_url, error, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.VideoID, e.Status, trackBytes, e.VideoURL, e.ThumbnailURL, e.Error, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

func GetVideoExportByID(id string) (VideoExport, error) {
	var e VideoExport
	row := DB.QueryRow(`SELECT id, video_id, status, tracks, video_url, thumbnail_url, error, created_at, updated_at FROM video_export WHERE id = ?`, id)

	var trackBytes []byte
	var videoNull, thumbNull, errorNull sql.NullString
	var createdAt, updatedAt sql.NullTime

	if err := row.Scan(&e.ID, &e.VideoID, &e.Status, &trackBytes, &videoNull, &thumbNull, &errorNull, &createdAt, &updatedAt); err != nil {
		return e, err
	}

	_ = json.Unmarshal(trackBytes, &e.Tracks)
	if videoNull.Valid {
		e.VideoURL = videoNull.String
	}
	if thumbNull.Valid {
		e.ThumbnailURL = thumbNull.String
	}
	if errorNull.Valid {
		e.Error = errorNull.String
	}
	if createdAt.Valid {
		e.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		e.UpdatedAt = updatedAt.Time
	}
	return e, nil
}

func UpdateVideoExportStatus(id string, status string, videoURL, thumbnailURL, errStr *string) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if videoURL != nil {
		updates["video_url"] = *videoURL
	}
	if thumbnailURL != nil {
		updates["thumbnail_url"] = *thumbnailURL
	}
	if errStr != nil {
		updates["error"] = *errStr
	}
	return GormDB.Model(&VideoExport{}).Where("id = ?", id).Updates(updates).Error
}
