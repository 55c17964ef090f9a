package task

import (
	"testing"
	"time"

	"github.com/kuchikomi-lab/kuchikomi/models"
)

func TestRegistry_CreateAndGet(t *testing.T) {
	reg := NewRegistry(time.Hour)

	created := reg.Create()
	if created.ID == "" {
		t.Fatal("task id empty")
	}

	got, ok := reg.Get(created.ID)
	if !ok || got != created {
		t.Fatalf("Get(%q) = %v, %v", created.ID, got, ok)
	}

	if _, ok := reg.Get("task-missing"); ok {
		t.Error("unknown id resolved")
	}
}

func TestTask_Lifecycle(t *testing.T) {
	reg := NewRegistry(time.Hour)
	task := reg.Create()

	snap := task.Snapshot()
	if snap.Status != StatusProcessing {
		t.Errorf("fresh status = %q", snap.Status)
	}
	if _, _, ok := task.Result(); ok {
		t.Error("Result available before completion")
	}

	task.SetProgress("口コミを読み込み中...", 40)
	snap = task.Snapshot()
	if snap.Progress != 40 || snap.Message != "口コミを読み込み中..." {
		t.Errorf("after SetProgress: %+v", snap)
	}

	result := &models.ScrapeResult{
		Reviews: []models.Review{{Author: "A", Body: "b", Rating: 4}},
		Place:   models.PlaceInfo{Name: "店"},
	}
	task.Complete(result, "完了: 1件取得")

	snap = task.Snapshot()
	if snap.Status != StatusCompleted || snap.Progress != 100 {
		t.Errorf("after Complete: %+v", snap)
	}
	reviews, place, ok := task.Result()
	if !ok || len(reviews) != 1 || place.Name != "店" {
		t.Errorf("Result = %v, %v, %v", reviews, place, ok)
	}
}

func TestTask_Fail(t *testing.T) {
	reg := NewRegistry(time.Hour)
	task := reg.Create()

	task.Fail(&models.ErrorDetail{Code: models.ErrCodeTimeout, Message: "timeout"})

	snap := task.Snapshot()
	if snap.Status != StatusError || snap.Progress != 100 {
		t.Errorf("after Fail: %+v", snap)
	}
	if snap.Error == nil || snap.Error.Code != models.ErrCodeTimeout {
		t.Errorf("error detail lost: %+v", snap.Error)
	}
	if _, _, ok := task.Result(); ok {
		t.Error("failed task served a result")
	}
}

func TestTask_ConcurrentProgress(t *testing.T) {
	reg := NewRegistry(time.Hour)
	task := reg.Create()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i <= 100; i++ {
			task.SetProgress("working", i)
		}
	}()
	for i := 0; i < 100; i++ {
		task.Snapshot()
	}
	<-done
}
