package jobqueue

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// sweepInterval controls how often the periodic retention sweep is enqueued.
const sweepInterval = 24 * time.Hour

// Manager manages the global job queue and background tasks
type Manager struct {
	queue       *Queue
	sweepTicker *time.Ticker
	stopCh      chan struct{}
	wg          sync.WaitGroup
	mu          sync.Mutex
	running     bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			queue:  NewQueue(2),
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	m.sweepTicker = time.NewTicker(sweepInterval)
	m.wg.Add(1)
	go m.sweepWorker()
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping...")
	close(m.stopCh)
	if m.sweepTicker != nil {
		m.sweepTicker.Stop()
	}
	m.wg.Wait()
	m.queue.Stop()
	m.running = false
}

// sweepWorker enqueues the periodic webhook retention sweep
func (m *Manager) sweepWorker() {
	defer m.wg.Done()

	for {
		select {
		case <-m.stopCh:
			return
		case <-m.sweepTicker.C:
			if _, err := m.queue.EnqueueJob(JobTypeWebhookSweep, map[string]interface{}{}); err != nil {
				log.Errorf("[JobQueue Manager] Could not enqueue webhook sweep: %v", err)
			}
		}
	}
}
