package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE function_models (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				version INTEGER NOT NULL DEFAULT 0,
				version_count INTEGER NOT NULL DEFAULT 0,
				status VARCHAR(20) NOT NULL CHECK (status IN ('draft', 'published', 'archived', 'deleted')),
				agent_config JSONB,
				metadata JSONB,
				owner VARCHAR(255) NOT NULL DEFAULT '',
				editors JSONB,
				viewers JSONB,
				is_public BOOLEAN NOT NULL DEFAULT false,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				published_at TIMESTAMP WITH TIME ZONE,
				archived_at TIMESTAMP WITH TIME ZONE,
				deleted_at TIMESTAMP WITH TIME ZONE,
				deleted_by VARCHAR(255) NOT NULL DEFAULT ''
			);

			CREATE INDEX idx_function_models_status ON function_models(status);
			CREATE INDEX idx_function_models_owner ON function_models(owner);
			CREATE INDEX idx_function_models_created_at ON function_models(created_at);
			CREATE INDEX idx_function_models_deleted_at ON function_models(deleted_at);

			CREATE TABLE model_nodes (
				model_id VARCHAR(255) NOT NULL REFERENCES function_models(id) ON DELETE CASCADE,
				id VARCHAR(255) NOT NULL,
				kind VARCHAR(50) NOT NULL,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				position_x DOUBLE PRECISION NOT NULL DEFAULT 0,
				position_y DOUBLE PRECISION NOT NULL DEFAULT 0,
				dependencies JSONB NOT NULL DEFAULT '[]',
				execution_mode VARCHAR(20) NOT NULL,
				status VARCHAR(20) NOT NULL,
				metadata JSONB,
				visual_properties JSONB,
				payload JSONB NOT NULL DEFAULT '{}',
				action JSONB,
				parent_id VARCHAR(255),
				execution_order INTEGER,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				PRIMARY KEY (model_id, id)
			);

			CREATE INDEX idx_model_nodes_model_id ON model_nodes(model_id);
			CREATE INDEX idx_model_nodes_kind ON model_nodes(kind);
			CREATE INDEX idx_model_nodes_parent_id ON model_nodes(model_id, parent_id);

			CREATE TABLE cross_feature_links (
				id VARCHAR(255) PRIMARY KEY,
				source_feature VARCHAR(50) NOT NULL,
				source_entity_id VARCHAR(255) NOT NULL,
				source_node_id VARCHAR(255) NOT NULL DEFAULT '',
				target_feature VARCHAR(50) NOT NULL,
				target_entity_id VARCHAR(255) NOT NULL,
				target_node_id VARCHAR(255) NOT NULL DEFAULT '',
				link_type VARCHAR(50) NOT NULL CHECK (link_type IN ('documents', 'implements', 'references', 'supports', 'nested')),
				strength DOUBLE PRECISION NOT NULL CHECK (strength >= 0 AND strength <= 1),
				context JSONB,
				created_by VARCHAR(255) NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_cross_feature_links_source ON cross_feature_links(source_feature, source_entity_id);
			CREATE INDEX idx_cross_feature_links_target ON cross_feature_links(target_feature, target_entity_id);
		`,
	}
}
