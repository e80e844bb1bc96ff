package dedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/newsintel/internal/domain"
	"github.com/aristath/newsintel/internal/repository"
)

const clusterKeyPrefix = "dedup:cluster"

// ClusterManager tracks DuplicateCluster membership and re-elects each
// cluster's primary article on every change (spec.md 4.2). Membership
// changes for a given cluster are serialized by a per-cluster-ID mutex, so
// concurrent add_to_cluster calls on different clusters never block each
// other.
type ClusterManager struct {
	kv repository.KVCache

	mu           sync.Mutex // guards articleToCluster and the locks map
	locks        map[string]*sync.Mutex
	articleToCluster map[string]string
}

// NewClusterManager builds a ClusterManager backed by kv for persistence.
func NewClusterManager(kv repository.KVCache) *ClusterManager {
	return &ClusterManager{
		kv:               kv,
		locks:            make(map[string]*sync.Mutex),
		articleToCluster: make(map[string]string),
	}
}

func (cm *ClusterManager) lockFor(clusterID string) *sync.Mutex {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	l, ok := cm.locks[clusterID]
	if !ok {
		l = &sync.Mutex{}
		cm.locks[clusterID] = l
	}
	return l
}

func clusterKey(clusterID string) string {
	return fmt.Sprintf("%s:%s", clusterKeyPrefix, clusterID)
}

// CreateCluster starts a new cluster with a single primary member.
func (cm *ClusterManager) CreateCluster(ctx context.Context, primary domain.ClusterMember, topic string) (domain.DuplicateCluster, error) {
	now := time.Now()
	primary.IsPrimary = true
	primary.SimilarityToPrime = 1.0

	cluster := domain.DuplicateCluster{
		ClusterID:     generateClusterID(topic),
		TopicSummary:  truncate(topic, 100),
		PrimaryID:     primary.ArticleID,
		Members:       []domain.ClusterMember{primary},
		UniqueSources: map[string]struct{}{primary.SourceID: {}},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := cm.save(ctx, cluster); err != nil {
		return domain.DuplicateCluster{}, err
	}
	cm.mu.Lock()
	cm.articleToCluster[primary.ArticleID] = cluster.ClusterID
	cm.mu.Unlock()
	return cluster, nil
}

// AddToCluster appends a member to an existing cluster and re-elects the
// primary. Returns false if the cluster doesn't exist or the article is
// already a member.
func (cm *ClusterManager) AddToCluster(ctx context.Context, clusterID string, member domain.ClusterMember) (bool, error) {
	lock := cm.lockFor(clusterID)
	lock.Lock()
	defer lock.Unlock()

	cluster, ok, err := cm.load(ctx, clusterID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if cluster.MemberByArticle(member.ArticleID) != nil {
		return false, nil
	}

	member.IsPrimary = false
	cluster.Members = append(cluster.Members, member)
	cluster.UniqueSources[member.SourceID] = struct{}{}
	cluster.UpdatedAt = time.Now()

	reelectPrimary(&cluster)

	if err := cm.save(ctx, cluster); err != nil {
		return false, err
	}
	cm.mu.Lock()
	cm.articleToCluster[member.ArticleID] = clusterID
	cm.mu.Unlock()
	return true, nil
}

// ClusterForArticle returns the cluster containing articleID, if any.
func (cm *ClusterManager) ClusterForArticle(ctx context.Context, articleID string) (domain.DuplicateCluster, bool, error) {
	cm.mu.Lock()
	clusterID, ok := cm.articleToCluster[articleID]
	cm.mu.Unlock()
	if !ok {
		return domain.DuplicateCluster{}, false, nil
	}
	return cm.load(ctx, clusterID)
}

// reelectPrimary scores every member via domain.PrimaryScore and marks
// exactly the highest scorer as primary (spec.md 4.2).
func reelectPrimary(cluster *domain.DuplicateCluster) {
	if len(cluster.Members) == 0 {
		return
	}
	maxWords := 0
	for _, m := range cluster.Members {
		if m.WordCount > maxWords {
			maxWords = m.WordCount
		}
	}
	now := time.Now()
	bestIdx := 0
	bestScore := domain.PrimaryScore(cluster.Members[0], maxWords, now)
	for i := 1; i < len(cluster.Members); i++ {
		s := domain.PrimaryScore(cluster.Members[i], maxWords, now)
		if s > bestScore {
			bestScore = s
			bestIdx = i
		}
	}
	for i := range cluster.Members {
		cluster.Members[i].IsPrimary = i == bestIdx
	}
	cluster.PrimaryID = cluster.Members[bestIdx].ArticleID
}

func (cm *ClusterManager) save(ctx context.Context, cluster domain.DuplicateCluster) error {
	buf, err := msgpack.Marshal(cluster)
	if err != nil {
		return fmt.Errorf("marshal cluster: %w", err)
	}
	return cm.kv.Set(ctx, clusterKey(cluster.ClusterID), buf, 0)
}

func (cm *ClusterManager) load(ctx context.Context, clusterID string) (domain.DuplicateCluster, bool, error) {
	raw, ok, err := cm.kv.Get(ctx, clusterKey(clusterID))
	if err != nil || !ok {
		return domain.DuplicateCluster{}, false, err
	}
	var cluster domain.DuplicateCluster
	if err := msgpack.Unmarshal(raw, &cluster); err != nil {
		return domain.DuplicateCluster{}, false, fmt.Errorf("unmarshal cluster: %w", err)
	}
	return cluster, true, nil
}

func generateClusterID(topic string) string {
	return fmt.Sprintf("cluster_%s", uuid.New().String())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
