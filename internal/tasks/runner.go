package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"simcontrol/internal/models"
	"simcontrol/internal/notify"
	"simcontrol/internal/simulation"
)

// permanentError marks failures that redelivery cannot fix: bad
// kwargs, validation errors, references to deleted rows. The message
// is acked and dropped; returning it to the broker would redeliver
// the same body into the same failure under prefetch 1 and pin the
// queue head.
type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return permanentError{err: err}
}

// Runner dispatches task messages to handlers.
type Runner struct {
	db     *gorm.DB
	mailer *notify.Mailer

	staleCutoff  time.Duration
	runRetention time.Duration
}

func NewRunner(db *gorm.DB, mailer *notify.Mailer, staleCutoff, runRetention time.Duration) *Runner {
	return &Runner{
		db:           db,
		mailer:       mailer,
		staleCutoff:  staleCutoff,
		runRetention: runRetention,
	}
}

// Handle is the consumer callback. It returns nil for messages that
// should be acked even though no work happened (expired, unknown
// task), so they are not requeued forever.
func (r *Runner) Handle(body []byte) error {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		logrus.Errorf("Failed to unmarshal task message: %v", err)
		return nil
	}

	if msg.Expired(time.Now().UTC()) {
		tasksExpired.Inc()
		logrus.WithFields(logrus.Fields{
			"task":       msg.Task,
			"message_id": msg.ID,
		}).Warn("Dropping expired task message")
		return nil
	}

	log := logrus.WithFields(logrus.Fields{
		"task":       msg.Task,
		"message_id": msg.ID,
	})
	log.Info("Processing task")

	var err error
	switch msg.Task {
	case TaskRunFund:
		err = r.runFund(msg.Kwargs)
	case TaskRunPortfolio:
		err = r.runPortfolio(msg.Kwargs)
	case TaskExecuteRun:
		err = r.executeByID(msg.Kwargs)
	case TaskMarkStale:
		err = r.markStale()
	case TaskPurgeRuns:
		err = r.purgeRuns()
	default:
		log.Warnf("Unknown task %q, dropping", msg.Task)
		tasksProcessed.WithLabelValues(msg.Task, "unknown").Inc()
		return nil
	}

	if err != nil {
		var perm permanentError
		if errors.As(err, &perm) {
			// ack and drop, redelivery would only repeat the failure
			log.Errorf("Dropping task after permanent failure: %v", err)
			tasksProcessed.WithLabelValues(msg.Task, "dropped").Inc()
			return nil
		}
		log.Errorf("Task failed: %v", err)
		tasksProcessed.WithLabelValues(msg.Task, "failure").Inc()
		return err
	}

	tasksProcessed.WithLabelValues(msg.Task, "success").Inc()
	return nil
}

// fundKwargs are the kwargs of simulation.run_fund.
type fundKwargs struct {
	InitialFund string            `json:"initial_fund"`
	Params      simulation.Params `json:"params"`
}

func (r *Runner) runFund(raw json.RawMessage) error {
	var kw fundKwargs
	if err := json.Unmarshal(raw, &kw); err != nil {
		return permanent(fmt.Errorf("decode run_fund kwargs: %w", err))
	}

	fund, err := decimal.NewFromString(kw.InitialFund)
	if err != nil {
		return permanent(fmt.Errorf("parse initial_fund %q: %w", kw.InitialFund, err))
	}

	run := &models.BotSimulationRun{
		ExternalID:     uuid.NewString(),
		SimulationType: models.SimulationTypeFund,
		InitialFund:    fund,
	}
	return r.createAndExecute(run, kw.Params)
}

// portfolioKwargs are the kwargs of simulation.run_portfolio.
type portfolioKwargs struct {
	InitialPortfolio map[string]float64 `json:"initial_portfolio"`
	Params           simulation.Params  `json:"params"`
}

func (r *Runner) runPortfolio(raw json.RawMessage) error {
	var kw portfolioKwargs
	if err := json.Unmarshal(raw, &kw); err != nil {
		return permanent(fmt.Errorf("decode run_portfolio kwargs: %w", err))
	}

	portfolio, err := json.Marshal(kw.InitialPortfolio)
	if err != nil {
		return permanent(err)
	}

	run := &models.BotSimulationRun{
		ExternalID:       uuid.NewString(),
		SimulationType:   models.SimulationTypePortfolio,
		InitialPortfolio: portfolio,
	}
	return r.createAndExecute(run, kw.Params)
}

func (r *Runner) createAndExecute(run *models.BotSimulationRun, params simulation.Params) error {
	if err := run.Validate(); err != nil {
		return permanent(err)
	}

	if raw, err := json.Marshal(params); err == nil {
		run.Params = raw
	}
	now := time.Now().UTC()
	run.EnqueuedAt = &now

	if err := r.db.Create(run).Error; err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return r.execute(run)
}

// executeKwargs are the kwargs of simulation.execute.
type executeKwargs struct {
	RunID uint `json:"run_id"`
}

func (r *Runner) executeByID(raw json.RawMessage) error {
	var kw executeKwargs
	if err := json.Unmarshal(raw, &kw); err != nil {
		return permanent(fmt.Errorf("decode execute kwargs: %w", err))
	}

	var run models.BotSimulationRun
	if err := r.db.First(&run, kw.RunID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return permanent(fmt.Errorf("run %d not found: %w", kw.RunID, err))
		}
		return fmt.Errorf("load run %d: %w", kw.RunID, err)
	}

	if run.Terminal() {
		logrus.Infof("Run %d already %s, skipping", run.ID, run.Status)
		return nil
	}
	return r.execute(&run)
}

// execute drives one run through the engine and records the outcome.
func (r *Runner) execute(run *models.BotSimulationRun) error {
	started := time.Now().UTC()
	run.Status = models.RunStatusRunning
	run.StartedAt = &started
	if err := r.db.Save(run).Error; err != nil {
		return fmt.Errorf("mark run %d running: %w", run.ID, err)
	}

	var params simulation.Params
	if len(run.Params) > 0 {
		if err := json.Unmarshal(run.Params, &params); err != nil {
			return r.failRun(run, fmt.Errorf("decode run params: %w", err))
		}
	}

	var result *simulation.Result
	var err error
	switch run.SimulationType {
	case models.SimulationTypeFund:
		result, err = simulation.RunFund(run.InitialFund, params)
	case models.SimulationTypePortfolio:
		var positions map[string]float64
		positions, err = run.PortfolioPositions()
		if err == nil {
			result, err = simulation.RunPortfolio(positions, params)
		}
	default:
		err = models.ErrUnknownSimulationType
	}
	if err != nil {
		return r.failRun(run, err)
	}

	trades := make([]models.SimulationTrade, 0, len(result.Trades))
	for _, trade := range result.Trades {
		trades = append(trades, models.SimulationTrade{
			RunID:      run.ID,
			Side:       trade.Side,
			Symbol:     trade.Symbol,
			Quantity:   trade.Quantity,
			Price:      trade.Price,
			ExecutedAt: trade.ExecutedAt,
		})
	}
	if len(trades) > 0 {
		if err := r.db.CreateInBatches(trades, 500).Error; err != nil {
			return r.failRun(run, fmt.Errorf("store trades: %w", err))
		}
	}

	finished := time.Now().UTC()
	run.Status = models.RunStatusCompleted
	run.FinalValue = result.FinalValue
	run.Pnl = result.Pnl
	run.TradeCount = len(result.Trades)
	run.FinishedAt = &finished
	if err := r.db.Save(run).Error; err != nil {
		return fmt.Errorf("finish run %d: %w", run.ID, err)
	}

	logrus.WithFields(logrus.Fields{
		"run_id":      run.ID,
		"type":        run.SimulationType,
		"final_value": run.FinalValue,
		"pnl":         run.Pnl,
		"trades":      run.TradeCount,
	}).Info("Simulation run completed")
	return nil
}

func (r *Runner) failRun(run *models.BotSimulationRun, cause error) error {
	finished := time.Now().UTC()
	run.Status = models.RunStatusFailed
	run.Error = cause.Error()
	run.FinishedAt = &finished
	if err := r.db.Save(run).Error; err != nil {
		return fmt.Errorf("mark run %d failed: %w", run.ID, err)
	}

	if r.mailer != nil {
		if err := r.mailer.SendRunFailure(run.ID, string(run.SimulationType), cause); err != nil {
			logrus.Errorf("Failed to send failure notification for run %d: %v", run.ID, err)
		}
	}

	logrus.WithField("run_id", run.ID).Errorf("Simulation run failed: %v", cause)
	return nil
}
